// Package all registers every built-in sport plugin.
package all

import (
	_ "github.com/chisports/gmengine/go/internal/sports/mlb" // register plugin
	_ "github.com/chisports/gmengine/go/internal/sports/nba" // register plugin
	_ "github.com/chisports/gmengine/go/internal/sports/nfl" // register plugin
	_ "github.com/chisports/gmengine/go/internal/sports/nhl" // register plugin
)
