// Package pixfs locates the files pix keeps on disk: the YAML config, the
// sqlite database holding the page cache and query history, and the log file.
package pixfs
