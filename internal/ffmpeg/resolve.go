package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
)

// minMajorVersion is the minimum supported FFmpeg version. Older builds may
// lack the codec support required for 16-bit PCM extraction.
const minMajorVersion = 4

// Resolve locates the FFmpeg binary. An explicit path (from configuration)
// wins; otherwise the binary is looked up on PATH.
// Returns ErrNotFound if no binary can be located.
func Resolve(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := exec.LookPath(explicitPath); err != nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, explicitPath)
		}
		return explicitPath, nil
	}

	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", fmt.Errorf("%w: install ffmpeg or set FFMPEG_PATH", ErrNotFound)
	}
	return path, nil
}

// versionRe matches the major version in "ffmpeg version 6.1.1-..." output.
var versionRe = regexp.MustCompile(`ffmpeg version (\d+)\.`)

// CheckVersion warns (via the returned message) when the resolved binary is
// older than the minimum supported version. A version that cannot be parsed
// is not an error; FFmpeg builds vary too much to be strict here.
func CheckVersion(ctx context.Context, e *Executor, ffmpegPath string) string {
	output, _ := e.RunOutput(ctx, ffmpegPath, []string{"-version"})
	matches := versionRe.FindStringSubmatch(output)
	if matches == nil {
		return ""
	}
	major, err := strconv.Atoi(matches[1])
	if err != nil || major >= minMajorVersion {
		return ""
	}
	return fmt.Sprintf("ffmpeg version %d is older than the supported minimum (%d)", major, minMajorVersion)
}
