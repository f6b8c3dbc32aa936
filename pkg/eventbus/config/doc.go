/*
Package config provides typed configuration lookup over map[string]any.

Values come from YAML or JSON files and are read with accessors that fall
back to a default when the key is missing or the value has the wrong type:

	cfg, err := config.FromFile("eventbus.yaml")
	if err != nil {
	    log.Fatal(err)
	}

	name := cfg.String("name", "bus")
	metrics := cfg.Bool("metrics.enabled", false)
	types := cfg.StringSlice("journal.types", nil)

Keys containing dots walk nested sections. A literal key with a dot in it
takes precedence over the nested path.

Config is safe for concurrent reads as long as the underlying map is not
modified.
*/
package config
