//go:build fyne && !cgo

package ui

import (
	"fmt"

	"animview/internal/config"
)

// Run informs the user that Fyne UI requires cgo (OpenGL) and a C toolchain.
// This stub is compiled when the build uses -tags fyne but CGO is disabled.
func Run(_ string, _ config.AppConfig) error {
	return fmt.Errorf("Fyne UI requires cgo (OpenGL). Enable cgo and install a C toolchain, then run with CGO_ENABLED=1. Example: CGO_ENABLED=1 go run -tags fyne ./cmd/animview ui [scene.json]")
}
