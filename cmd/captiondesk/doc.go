// Package main hosts the captiondesk CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into calls against
// the captioning backend: submitting text or recorded audio, moderating the
// queue, reading the overview, and managing settings and credentials. It
// centralizes configuration resolution, local state, and logging setup so
// subcommands can focus on rendering.
//
// Keep this package lean: behaviour belongs in the internal packages
// (workflow, moderation, overview); commands here wire and render them.
package main
