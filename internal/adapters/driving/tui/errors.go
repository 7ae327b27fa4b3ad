package tui

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("tui: chat service is required")

// ErrMissingCostService is returned when the cost service is not provided.
var ErrMissingCostService = errors.New("tui: cost service is required")
