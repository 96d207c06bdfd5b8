package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"flashcards.app/generator/tools/linters/enumvalidator"
)

func main() {
	singlechecker.Main(enumvalidator.Analyzer)
}
