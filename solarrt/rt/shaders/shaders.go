package shaders

import (
	_ "embed"
)

//go:embed lit.wgsl
var LitWGSL string

//go:embed emissive.wgsl
var EmissiveWGSL string
