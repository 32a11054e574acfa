// Package uploads reads the JSONL upload log the external tool appends to
// after every upload, and answers searches and remote-name checks over it.
package uploads
