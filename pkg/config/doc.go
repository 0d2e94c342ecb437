// Package config loads the YAML configuration of reachsched.
//
// A configuration file has four sections, each optional:
//
//	searcher:
//	  strategy: astar2           # astar or astar2
//	  distance_file: prog.dist
//	  strict_distances: false    # fail on malformed distance records
//	  debug_worklist: false
//	exploration:
//	  max_steps: 10000
//	  stop_at_target: true
//	store:
//	  path: runs.db              # empty disables recording
//	telemetry:
//	  logging:
//	    level: info
//	  metrics:
//	    enabled: true
//	    listen_address: ":9090"
//
// Missing keys keep the values of DefaultConfig. Struct constraints are
// checked with go-playground/validator; the telemetry section is checked by
// telemetry.Config.Validate.
package config
