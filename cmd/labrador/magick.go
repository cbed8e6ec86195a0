//go:build magick

package main

// Registers the "magick" executor, selectable with -engine magick.
import _ "github.com/pictools/labrador/pkg/magick"
