// colortune-replay-provider - Canned response vision provider (colortune plugin)
//
// Answers every model call from a replay file instead of a real model, so
// style discovery can be exercised offline and reproducibly.
//
// Build:
//   go build -o colortune-replay-provider ./cmd/colortune-replay-provider
//
// Usage:
//   export COLORTUNE_REPLAY_FILE=./replay.json
//   colortune styles photo.jpg --provider plugin --plugin-path ./colortune-replay-provider
//
// Replay file:
//   {
//     "model": "replay",
//     "responses": [
//       {"match": "Analyze this photograph", "response": "{\"scene_type\": \"street\"}"},
//       {"match": "different but TASTEFUL", "response_file": "styles.json"}
//     ],
//     "default": "{}"
//   }
package main

import (
	"fmt"
	"os"

	pluginapi "github.com/jmylchreest/colortune/pkg/plugin"
)

// ReplayFileEnv names the replay file.
const ReplayFileEnv = "COLORTUNE_REPLAY_FILE"

func main() {
	path := os.Getenv(ReplayFileEnv)
	if path == "" {
		fmt.Fprintf(os.Stderr, "%s is not set\n", ReplayFileEnv)
		os.Exit(1)
	}

	replay, err := LoadReplay(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	pluginapi.Serve(replay)
}
