// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride redirects ConfigDir, so tests can point the molt config
// directory (config.toml plus the history artifacts stored beside it) at a
// throwaway location instead of relying on HOME, which os.UserHomeDir()
// does not honor on every platform.
var configDirOverride string

// Reset clears the config directory override. Register it with t.Cleanup
// wherever SetConfigDirOverride is used.
func Reset() {
	configDirOverride = ""
}

// SetConfigDirOverride points ConfigDir at dir until Reset is called.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
