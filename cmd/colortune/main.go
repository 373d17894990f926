// colortune - AI-assisted colour grading for photographs
//
// colortune applies a deterministic grading pipeline to images and asks
// vision models for distinct, validated grading styles.
package main

import (
	"os"

	"github.com/jmylchreest/colortune/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
