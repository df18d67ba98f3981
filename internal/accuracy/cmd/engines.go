// Copyright © 2025 Adam Hock
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamhock/chess-game-fetcher/pkg/config"
	"github.com/adamhock/chess-game-fetcher/pkg/engine"
)

func Engines() *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "Lists the engines registered for analysis",
		Args:  cobra.ExactArgs(0),

		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := config.Engines()
			if err != nil {
				return err
			}

			if len(registry) == 0 {
				fmt.Println("\x1b[31mNo Engines Registered.\x1b[0m")
				return nil
			}

			fmt.Printf("\x1b[32mRegistered Engines\x1b[0m (%s):\n\n", config.EnginesFile)

			for name, entry := range registry {
				depth := entry.Depth
				if depth <= 0 {
					depth = engine.DefaultDepth
				}

				fmt.Printf("- \x1b[34m%-12s\x1b[0m %s (depth %d)\n", name, entry.Cmd, depth)
			}

			return nil
		},
	}
}
