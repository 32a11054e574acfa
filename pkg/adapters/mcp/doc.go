// Package mcp exposes pipedeck actions as Model Context Protocol tools.
//
// Agents start an action with trigger_action and poll get_status until the
// status reports done.
package mcp
