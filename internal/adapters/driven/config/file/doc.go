// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the docmind home directory.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable prompt templates
//   - Watcher: change notifications for the config file
package file
