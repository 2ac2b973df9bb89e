package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/bp-assistant/internal/bot/menus"
	"github.com/vladimiradmaev/bp-assistant/internal/bot/state"
	"github.com/vladimiradmaev/bp-assistant/internal/database"
	"github.com/vladimiradmaev/bp-assistant/internal/logger"
)

// CommandHandler handles bot commands
type CommandHandler struct {
	api          *tgbotapi.BotAPI
	stateManager state.StateManager
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(api *tgbotapi.BotAPI, stateManager state.StateManager) *CommandHandler {
	return &CommandHandler{
		api:          api,
		stateManager: stateManager,
	}
}

// Handle processes a command message
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message, user *database.User) error {
	logger.Infof("Handling command %s from user %d", message.Command(), user.ID)

	switch message.Command() {
	case "start":
		h.stateManager.SetUserState(user.TelegramID, state.None)
		h.stateManager.ClearTempData(user.TelegramID)
		return menus.SendMainMenu(h.api, message.Chat.ID)
	case "cancel":
		h.stateManager.SetUserState(user.TelegramID, state.None)
		h.stateManager.ClearTempData(user.TelegramID)
		msg := tgbotapi.NewMessage(message.Chat.ID, "Cancelled.")
		if _, err := h.api.Send(msg); err != nil {
			return err
		}
		return menus.SendMainMenu(h.api, message.Chat.ID)
	case "help":
		return h.handleHelp(message.Chat.ID)
	default:
		msg := tgbotapi.NewMessage(message.Chat.ID, "Unknown command. Use /help to see what I can do.")
		_, err := h.api.Send(msg)
		return err
	}
}

func (h *CommandHandler) handleHelp(chatID int64) error {
	text := `Available commands:
/start - Show the main menu
/cancel - Abort the current action
/help - Show this message

How to add a reading:
1. Press "📷 New reading"
2. Send a photo of your monitor's display
3. If I am confident about the numbers I save them right away;
   otherwise I will ask you to confirm

The photo is stored together with the reading so you can always
double-check the values later.`

	msg := tgbotapi.NewMessage(chatID, text)
	_, err := h.api.Send(msg)
	return err
}
