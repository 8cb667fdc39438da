// Package modkit is how API modules are assembled: shared deps in, build
// options resolved to a Built that modules embed for naming and mounting
package modkit

import "immiwatch/internal/modkit/module"

// Module is the surface the API mounts and cross-wires
type Module = module.Module

// Builder is the constructor shape every module package exposes as New
type Builder func(Deps, ...Option) Module
