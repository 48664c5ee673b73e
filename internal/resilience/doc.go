// Package resilience groups the fault tolerance building blocks used on
// outbound calls: circuit breakers around feed sources and Discord
// webhooks, and retry with exponential backoff for transient failures.
//
//	cb := circuitbreaker.New(circuitbreaker.FeedFetchConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return fetchFeed()
//	})
//
//	err := retry.WithBackoff(ctx, retry.FeedFetchConfig(), func() error {
//	    return performOperation()
//	})
package resilience
