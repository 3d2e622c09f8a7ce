// Creditgate guards a metered third-party data provider behind admission
// checks, pacing, and a circuit breaker.
//
// It reads the provider's remaining credit balance before every admitted
// action, spreads spend over time with a waiting token bucket, and refuses
// everything once the balance falls below a configured floor.
//
// Usage:
//
//	# Start the daemon with default configuration
//	creditgate run
//
//	# Start with a custom configuration file
//	creditgate run --config /etc/creditgate/config.yaml
//
//	# Validate a configuration file
//	creditgate validate
//
//	# Check the provider balance once
//	creditgate balance
//
//	# Show the registered action cost table
//	creditgate costs
//
//	# List recent refusals from the audit trail
//	creditgate refusals --limit 20
package main

func main() {
	Execute()
}
