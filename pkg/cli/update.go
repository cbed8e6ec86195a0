package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/sirupsen/logrus"
)

// semverPattern finds a semver substring like v1.2.3 or 1.2.3 in a tag name.
var semverPattern = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

// latestRelease resolves the newest published release of repo. The selfupdate
// detector handles conventional tags; the direct API scan covers repos whose
// tags embed the version in a looser format.
func latestRelease(repo string) (*selfupdate.Release, bool, error) {
	if latest, found, err := selfupdate.DetectLatest(repo); err == nil && found {
		return latest, true, nil
	}
	return scanReleases(repo)
}

// scanReleases queries the GitHub releases API and returns the highest
// published, non-prerelease semver it can find, with a best-guess asset URL.
func scanReleases(repo string) (*selfupdate.Release, bool, error) {
	apiURL := fmt.Sprintf("https://api.github.com/repos/%s/releases", repo)
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(apiURL)
	if err != nil {
		return nil, false, fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, false, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, string(body))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read github response: %w", err)
	}

	var releases []struct {
		TagName    string `json:"tag_name"`
		Name       string `json:"name"`
		Draft      bool   `json:"draft"`
		Prerelease bool   `json:"prerelease"`
		Assets     []struct {
			Name               string `json:"name"`
			BrowserDownloadURL string `json:"browser_download_url"`
		} `json:"assets"`
	}
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, false, fmt.Errorf("decode github releases: %w", err)
	}

	type candidate struct {
		ver      semver.Version
		assetURL string
	}
	var candidates []candidate
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		match := semverPattern.FindString(r.TagName)
		if match == "" {
			match = semverPattern.FindString(r.Name)
			if match == "" {
				continue
			}
		}
		v, perr := semver.Parse(strings.TrimPrefix(match, "v"))
		if perr != nil {
			continue
		}
		assetURL := ""
		for _, a := range r.Assets {
			name := strings.ToLower(a.Name)
			if strings.Contains(name, "linux") || strings.Contains(name, "darwin") ||
				strings.Contains(name, "windows") || strings.Contains(name, "amd64") ||
				strings.Contains(name, "arm64") {
				assetURL = a.BrowserDownloadURL
				break
			}
			if assetURL == "" {
				assetURL = a.BrowserDownloadURL
			}
		}
		candidates = append(candidates, candidate{ver: v, assetURL: assetURL})
	}
	if len(candidates) == 0 {
		return nil, false, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ver.GT(candidates[j].ver)
	})
	best := candidates[0]
	return &selfupdate.Release{Version: best.ver, AssetURL: best.assetURL}, true, nil
}

// SelfUpdate checks repo for a newer release and, after confirmation,
// replaces the running binary and restarts it.
func SelfUpdate(repo string) error {
	fmt.Printf("Current version: %s\n", Version)
	latest, found, err := latestRelease(repo)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	if !found || latest == nil {
		fmt.Printf("No releases found for %s.\n", repo)
		return nil
	}
	fmt.Printf("Latest version: %s\n", latest.Version)

	if current, perr := semver.Parse(strings.TrimPrefix(Version, "v")); perr == nil && latest.Version.LTE(current) {
		fmt.Printf("You are already running the latest version: %s.\n", current)
		return nil
	}
	if latest.AssetURL == "" {
		fmt.Printf("Version %s is available but has no downloadable asset.\n", latest.Version)
		fmt.Println("Please visit the project releases page to download it.")
		return nil
	}

	answer, err := PromptLine(fmt.Sprintf("Update to %s now? (y/N): ", latest.Version))
	if err != nil {
		return fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
	default:
		fmt.Println("Update cancelled.")
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	fmt.Printf("Updated to %s, restarting...\n", latest.Version)
	restart(exe)
	return nil
}

// restart replaces the current process image with exe. Exec only returns on
// error, in which case the new binary is started as a child instead.
func restart(exe string) {
	argv := append([]string{exe}, os.Args[1:]...)
	if err := syscall.Exec(exe, argv, os.Environ()); err != nil {
		cmd := exec.Command(exe, os.Args[1:]...)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if startErr := cmd.Start(); startErr != nil {
			fmt.Println("Updated, but the automatic restart failed. Please restart manually.")
			return
		}
		os.Exit(0)
	}
}

// NotifyIfOutdated logs a hint when a newer release exists. Check failures
// only surface at debug level.
func NotifyIfOutdated(log logrus.FieldLogger, repo string) {
	current, err := semver.Parse(strings.TrimPrefix(Version, "v"))
	if err != nil {
		log.WithError(err).Debug("Skipping update check, unparseable build version")
		return
	}
	latest, found, err := latestRelease(repo)
	if err != nil {
		log.WithError(err).Debug("Update check failed")
		return
	}
	if !found || latest == nil {
		return
	}
	if latest.Version.GT(current) {
		log.WithFields(logrus.Fields{
			"current": current.String(),
			"latest":  latest.Version.String(),
		}).Info("A newer release is available; run with -update to install it")
	}
}
