// Package mcp exposes the relay's lobby over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call turns into a request against
// the relay's REST API, so an MCP host sees exactly what a polling lobby
// client sees and the relay keeps a single source of truth. Tools are
// read-only; joining and playing happens over the WebSocket transport, which
// an MCP host has no business driving.
package mcp
