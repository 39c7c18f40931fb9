// Package policy loads faultkit configuration and turns it into a
// dispatch registry, a classifier and a logger.
//
// Configuration is layered with koanf. Precedence, highest first:
// command line flags, FAULTKIT_* environment variables, the YAML file,
// built-in defaults.
//
//	log:
//	  level: info
//	  format: console
//	metrics:
//	  enabled: false
//	  namespace: faultkit
//	default:
//	  action: report
//	handlers:
//	  range_violation: { action: recover, value: -1 }
//	  undeclared_reference: { action: repropagate }
//	rules:
//	  - kind: malformed_input
//	    contains: ["bad json"]
//	  - kind: custom
//	    pattern: "^ValidationError"
//
// Environment variables map the first underscore after the prefix to a
// section separator: FAULTKIT_LOG_LEVEL sets log.level. Handler variables
// end in the field name: FAULTKIT_HANDLERS_RANGE_VIOLATION_ACTION sets
// handlers.range_violation.action. Flags map the first dash: --log-level
// sets log.level.
package policy
