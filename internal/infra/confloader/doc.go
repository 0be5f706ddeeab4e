// Package confloader loads configuration with koanf and watches the
// configuration file with fsnotify.
//
// Priority (highest to lowest):
//
//  1. Overrides (command-line flags)
//  2. Environment variables (XLREMOTE_ prefix)
//  3. The YAML configuration file
//  4. Defaults already present in the target struct
package confloader
