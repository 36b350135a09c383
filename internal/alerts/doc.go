// Package alerts implements the rule evaluation engine and webhook
// delivery for NeuroPulse alerting. Rules are evaluated against each new
// telemetry snapshot; webhooks are delivered to Slack or generic HTTP
// targets.
package alerts
