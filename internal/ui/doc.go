// Package ui renders the navigation stack as a Bubble Tea program.
//
// Core pieces:
//   - View: a screen with its own model, update, view (Elm-style)
//   - PanelView: the View for one catalog panel (title, body, links)
//   - ViewStack: the rendered mirror of the navigation stack
//   - Renderer: the nav.Controller that reconciles the ViewStack on every round
//   - Overlay: modal views (confirmation) stacked above the panels
//   - KeyHandler: single keys plus SPC-prefixed leader sequences
//
// Key handlers never wait on a round from the Bubble Tea event loop: the
// Renderer needs that loop to apply its transition. Awaitable mutations run
// inside tea.Cmds; the rest use the stack's detached tier.
package ui
