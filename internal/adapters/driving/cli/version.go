package cli

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build details",
	Long: `Prints the genie version, the Go toolchain and platform it was built
for, and the source revision when the binary was built from a checkout.
The configured models are listed when settings can be read.`,
	RunE: runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(versionCmd)
}

type buildInfo struct {
	Version   string `json:"version"`
	Go        string `json:"go"`
	Platform  string `json:"platform"`
	Revision  string `json:"revision,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
	LLM       string `json:"llm,omitempty"`
	Embedding string `json:"embedding,omitempty"`
}

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

func collectBuildInfo() buildInfo {
	info := buildInfo{
		Version:  version,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := readBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				info.Revision = s.Value
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil {
			info.LLM = fmt.Sprintf("%s %s", s.LLM.Provider, s.LLM.Model)
			info.Embedding = fmt.Sprintf("%s %s", s.Embedding.Provider, s.Embedding.Model)
		}
	}
	return info
}

func runVersion(cmd *cobra.Command, _ []string) error {
	info := collectBuildInfo()
	if versionJSON {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("genie version %s\n", info.Version)
	cmd.Printf("  go:        %s %s\n", info.Go, info.Platform)
	if info.Revision != "" {
		rev := info.Revision
		if len(rev) > 12 {
			rev = rev[:12]
		}
		if info.Modified {
			rev += " (modified)"
		}
		cmd.Printf("  revision:  %s\n", rev)
	}
	if info.LLM != "" {
		cmd.Printf("  llm:       %s\n", info.LLM)
		cmd.Printf("  embedding: %s\n", info.Embedding)
	}
	return nil
}
