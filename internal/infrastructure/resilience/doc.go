/*
Package resilience provides the circuit breakers guarding outbound page loads.

# Overview

Each remote host gets its own breaker through a Group, so a site that keeps
timing out stops receiving requests for a while without affecting
navigation to other hosts.

# Usage

	group := resilience.NewGroup(resilience.Settings{
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	resp, err := resilience.Do(group.Get(u.Host), func() (*resty.Response, error) {
		return req.Get(u.String())
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                       [failure]
	                                           v
	                                          Open
*/
package resilience
