package commands

import "github.com/temirov/cfl/internal/walker"

// TreeBuilder renders the ignore-aware directory structure of a root.
type TreeBuilder struct {
	Walker *walker.Walker
}
