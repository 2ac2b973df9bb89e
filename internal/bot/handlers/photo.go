package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/bp-assistant/internal/bot/keyboards"
	"github.com/vladimiradmaev/bp-assistant/internal/bot/state"
	"github.com/vladimiradmaev/bp-assistant/internal/database"
	apperrors "github.com/vladimiradmaev/bp-assistant/internal/errors"
	"github.com/vladimiradmaev/bp-assistant/internal/logger"
	"github.com/vladimiradmaev/bp-assistant/internal/services"
	"github.com/vladimiradmaev/bp-assistant/internal/trends"
)

// PhotoHandler feeds monitor photos into the capture pipeline.
type PhotoHandler struct {
	api          *tgbotapi.BotAPI
	deps         Dependencies
	stateManager state.StateManager
	errHandler   *apperrors.Handler
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(api *tgbotapi.BotAPI, deps Dependencies, stateManager state.StateManager) *PhotoHandler {
	return &PhotoHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
		errHandler:   apperrors.NewHandler(logger.GetLogger()),
	}
}

// Handle processes a photo message
func (h *PhotoHandler) Handle(ctx context.Context, message *tgbotapi.Message, user *database.User) error {
	// Get the largest photo
	photo := message.Photo[len(message.Photo)-1]
	file, err := h.api.GetFile(tgbotapi.FileConfig{FileID: photo.FileID})
	if err != nil {
		return fmt.Errorf("failed to get file: %w", err)
	}

	processingMsg := tgbotapi.NewMessage(message.Chat.ID, "Analyzing the display...")
	sentMsg, err := h.api.Send(processingMsg)
	if err != nil {
		return fmt.Errorf("failed to send processing message: %w", err)
	}

	imageData, err := h.downloadImage(file.Link(h.api.Token))
	if err != nil {
		h.errHandler.Handle(ctx, err)
		return h.sendFailure(message.Chat.ID)
	}

	logger.Infof("Starting capture for user %d (%d bytes)", user.ID, len(imageData))
	result, err := h.deps.CaptureSvc.Capture(ctx, user.ID, imageData)

	// Delete processing message
	deleteMsg := tgbotapi.NewDeleteMessage(message.Chat.ID, sentMsg.MessageID)
	h.api.Send(deleteMsg)

	if err != nil {
		// Distinct error kinds exist for logging; the user always gets
		// the same retryable message.
		h.errHandler.Handle(ctx, err)
		return h.sendFailure(message.Chat.ID)
	}

	if result.Status == services.StatusAwaitingConfirmation {
		h.stateManager.SetUserState(user.TelegramID, state.AwaitingConfirmation)

		text := fmt.Sprintf("🤔 I'm not confident about this one (confidence %.0f%%).\n\n"+
			"I read: *%d/%d* mmHg, pulse *%d*\n\nSave it anyway?",
			result.Analysis.Confidence*100,
			result.Analysis.Systolic, result.Analysis.Diastolic, result.Analysis.Pulse)
		msg := tgbotapi.NewMessage(message.Chat.ID, text)
		msg.ParseMode = "Markdown"
		msg.ReplyMarkup = keyboards.Confirmation()
		_, err = h.api.Send(msg)
		return err
	}

	h.stateManager.SetUserState(user.TelegramID, state.None)
	return sendSavedReading(h.api, message.Chat.ID, result.Reading)
}

func (h *PhotoHandler) downloadImage(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d downloading image", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (h *PhotoHandler) sendFailure(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Sorry, something went wrong while processing the photo. Please try again.")
	msg.ReplyMarkup = keyboards.BackToMenu()
	_, err := h.api.Send(msg)
	return err
}

// sendSavedReading confirms a stored reading with its category, shared by
// the photo and callback handlers.
func sendSavedReading(api *tgbotapi.BotAPI, chatID int64, reading *database.Reading) error {
	category := trends.Categorize(reading.Systolic, reading.Diastolic)

	text := fmt.Sprintf("✅ *Reading saved*\n\n"+
		"🩺 *%d/%d* mmHg\n"+
		"💓 Pulse: *%d* bpm\n"+
		"🏷️ Category: %s\n"+
		"🕒 %s",
		reading.Systolic, reading.Diastolic,
		reading.Pulse,
		category.Label,
		reading.Timestamp.Format("02 Jan 2006 15:04"))

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 History", "history"),
			tgbotapi.NewInlineKeyboardButtonData("📷 New reading", "new_reading"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", "main_menu"),
		),
	)
	_, err := api.Send(msg)
	return err
}
