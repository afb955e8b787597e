/*
Package resilience provides a circuit breaker for calls to services that
may be absent, such as a media center's JSON-RPC endpoint.

A breaker opens after a run of consecutive failures and rejects calls with
ErrOpen until its cooldown elapses. It then lets a limited number of trial
calls through; success closes it again and failure reopens it.

	breaker := resilience.New("kodi", resilience.Settings{Failures: 3})
	err := breaker.Do(func() error {
		return client.Call()
	})
*/
package resilience
