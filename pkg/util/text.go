package util

import "github.com/common-nighthawk/go-figure"

// GenerateASCIIArt renders text in a figlet font ("" selects the default).
func GenerateASCIIArt(text string, font string) string {
	myFigure := figure.NewFigure(text, font, true)
	return myFigure.String()
}
