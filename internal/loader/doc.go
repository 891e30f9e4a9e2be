// Package loader turns configuration sources into config instances.
//
// Files are parsed into a plain mapping first and then handed to config.New,
// so every format shares the same field rules. Duplicate keys are a parse
// error in every format, at every nesting level; no parser is allowed to keep
// the last occurrence silently.
package loader
