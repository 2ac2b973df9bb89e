package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/bp-assistant/internal/bot/keyboards"
	"github.com/vladimiradmaev/bp-assistant/internal/bot/menus"
	"github.com/vladimiradmaev/bp-assistant/internal/bot/state"
	"github.com/vladimiradmaev/bp-assistant/internal/database"
	apperrors "github.com/vladimiradmaev/bp-assistant/internal/errors"
	"github.com/vladimiradmaev/bp-assistant/internal/logger"
)

// CallbackHandler handles callback query messages
type CallbackHandler struct {
	api          *tgbotapi.BotAPI
	deps         Dependencies
	stateManager state.StateManager
	errHandler   *apperrors.Handler
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(api *tgbotapi.BotAPI, deps Dependencies, stateManager state.StateManager) *CallbackHandler {
	return &CallbackHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
		errHandler:   apperrors.NewHandler(logger.GetLogger()),
	}
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery, user *database.User) error {
	// Answer the callback query first to clear the loading state
	callback := tgbotapi.NewCallback(query.ID, "")
	if _, err := h.api.Request(callback); err != nil {
		return err
	}

	chatID := query.Message.Chat.ID
	data := query.Data

	if action, arg, found := strings.Cut(data, ":"); found {
		return h.handlePrefixed(ctx, chatID, user, action, arg)
	}

	switch data {
	case "main_menu":
		h.stateManager.SetUserState(user.TelegramID, state.None)
		h.stateManager.ClearTempData(user.TelegramID)
		return menus.SendMainMenu(h.api, chatID)
	case "new_reading":
		return h.handleNewReading(chatID, user)
	case "history":
		return h.handleHistory(ctx, chatID, user, 0)
	case "dashboard":
		return h.handleDashboard(ctx, chatID, user)
	case "profile":
		return h.handleProfile(ctx, chatID, user)
	case "edit_profile":
		return h.handleEditProfile(chatID, user)
	case "reminders":
		return h.handleReminders(ctx, chatID, user)
	case "add_daily_reminder":
		return h.handleAddDailyReminder(chatID, user)
	case "add_weekly_reminder":
		return h.handleAddWeeklyReminder(chatID)
	case "confirm_save":
		return h.handleConfirmSave(ctx, chatID, user)
	case "cancel_save":
		return h.handleCancelSave(chatID, user)
	default:
		msg := tgbotapi.NewMessage(chatID, "Please use the menu.")
		_, err := h.api.Send(msg)
		return err
	}
}

func (h *CallbackHandler) handlePrefixed(ctx context.Context, chatID int64, user *database.User, action, arg string) error {
	switch action {
	case "history":
		offset, err := strconv.Atoi(arg)
		if err != nil || offset < 0 {
			offset = 0
		}
		return h.handleHistory(ctx, chatID, user, offset)
	case "gender":
		return h.handleGender(chatID, user, arg)
	case "weekday":
		return h.handleWeekday(chatID, user, arg)
	case "edit_reading":
		return h.handleEditReading(chatID, user, arg)
	case "edit_notes":
		return h.handleEditNotes(chatID, user, arg)
	case "delete_reading":
		return h.handleDeleteReading(chatID, arg)
	case "confirm_delete":
		return h.handleConfirmDelete(ctx, chatID, user, arg)
	case "delete_reminder":
		return h.handleDeleteReminder(ctx, chatID, user, arg)
	default:
		msg := tgbotapi.NewMessage(chatID, "Please use the menu.")
		_, err := h.api.Send(msg)
		return err
	}
}

func (h *CallbackHandler) handleNewReading(chatID int64, user *database.User) error {
	h.stateManager.SetUserState(user.TelegramID, state.Capturing)

	text := `📷 *Send a photo of your monitor's display*

💡 For a reliable read:
• Fill the frame with the display
• Avoid glare and reflections
• Keep the numbers in focus

I will read systolic, diastolic and pulse, store the photo and save the reading.`

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.BackToMenu()
	_, err := h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleHistory(ctx context.Context, chatID int64, user *database.User, offset int) error {
	readings, err := h.deps.ReadingSvc.ListAll(ctx, user.ID)
	if err != nil {
		h.errHandler.Handle(ctx, err)
		return h.sendFailure(chatID)
	}
	return menus.SendHistory(h.api, chatID, readings, offset)
}

func (h *CallbackHandler) handleDashboard(ctx context.Context, chatID int64, user *database.User) error {
	now := time.Now()
	week, err := h.deps.ReadingSvc.ListByDateRange(ctx, user.ID, now.AddDate(0, 0, -7), now)
	if err != nil {
		h.errHandler.Handle(ctx, err)
		return h.sendFailure(chatID)
	}
	month, err := h.deps.ReadingSvc.ListByDateRange(ctx, user.ID, now.AddDate(0, 0, -30), now)
	if err != nil {
		h.errHandler.Handle(ctx, err)
		return h.sendFailure(chatID)
	}

	var latest *database.Reading
	if all, err := h.deps.ReadingSvc.ListAll(ctx, user.ID); err == nil && len(all) > 0 {
		latest = &all[0]
	}

	return menus.SendDashboard(h.api, chatID, week, month, latest)
}

func (h *CallbackHandler) handleProfile(ctx context.Context, chatID int64, user *database.User) error {
	profile, err := h.deps.ProfileSvc.Get(ctx, user.ID)
	if err != nil && !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		h.errHandler.Handle(ctx, err)
		return h.sendFailure(chatID)
	}
	return menus.SendProfile(h.api, chatID, profile)
}

func (h *CallbackHandler) handleEditProfile(chatID int64, user *database.User) error {
	h.stateManager.ClearTempData(user.TelegramID)
	h.stateManager.SetUserState(user.TelegramID, state.WaitingForProfileDOB)

	msg := tgbotapi.NewMessage(chatID, "🎂 Send your date of birth as YYYY-MM-DD, or \"-\" to skip.")
	_, err := h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleGender(chatID int64, user *database.User, gender string) error {
	h.stateManager.SetTempData(user.TelegramID, "profile_gender", gender)
	h.stateManager.SetUserState(user.TelegramID, state.WaitingForProfileCondition)

	msg := tgbotapi.NewMessage(chatID, "🏥 List your medical conditions separated by commas, or \"-\" if none.")
	_, err := h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleReminders(ctx context.Context, chatID int64, user *database.User) error {
	reminders, err := h.deps.ReminderSvc.List(ctx, user.ID)
	if err != nil {
		h.errHandler.Handle(ctx, err)
		return h.sendFailure(chatID)
	}
	return menus.SendReminders(h.api, chatID, reminders)
}

func (h *CallbackHandler) handleAddDailyReminder(chatID int64, user *database.User) error {
	h.stateManager.SetUserState(user.TelegramID, state.WaitingForDailyReminder)

	msg := tgbotapi.NewMessage(chatID, "⏰ What time every day? Send HH:MM, for example 08:30.")
	_, err := h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleAddWeeklyReminder(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "📅 Which day of the week?")
	msg.ReplyMarkup = keyboards.Weekday()
	_, err := h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleWeekday(chatID int64, user *database.User, arg string) error {
	weekday, err := strconv.Atoi(arg)
	if err != nil || weekday < 0 || weekday > 6 {
		return h.sendFailure(chatID)
	}

	h.stateManager.SetTempData(user.TelegramID, "reminder_weekday", weekday)
	h.stateManager.SetUserState(user.TelegramID, state.WaitingForWeeklyReminder)

	msg := tgbotapi.NewMessage(chatID, "⏰ What time on that day? Send HH:MM, for example 08:30.")
	_, err = h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleConfirmSave(ctx context.Context, chatID int64, user *database.User) error {
	h.stateManager.SetUserState(user.TelegramID, state.None)

	reading, err := h.deps.CaptureSvc.Confirm(ctx, user.ID)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			msg := tgbotapi.NewMessage(chatID, "That capture has expired. Please send the photo again.")
			msg.ReplyMarkup = keyboards.BackToMenu()
			_, err := h.api.Send(msg)
			return err
		}
		h.errHandler.Handle(ctx, err)
		return h.sendFailure(chatID)
	}

	return sendSavedReading(h.api, chatID, reading)
}

func (h *CallbackHandler) handleCancelSave(chatID int64, user *database.User) error {
	h.stateManager.SetUserState(user.TelegramID, state.None)
	h.deps.CaptureSvc.Cancel(user.ID)

	msg := tgbotapi.NewMessage(chatID, "❌ Cancelled, nothing was saved.")
	msg.ReplyMarkup = keyboards.BackToMenu()
	_, err := h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleEditReading(chatID int64, user *database.User, arg string) error {
	if _, err := strconv.ParseUint(arg, 10, 32); err != nil {
		return h.sendFailure(chatID)
	}

	h.stateManager.SetTempData(user.TelegramID, "edit_reading_id", arg)
	h.stateManager.SetUserState(user.TelegramID, state.WaitingForEditValues)

	msg := tgbotapi.NewMessage(chatID, "✏️ Send the corrected values as \"130/85 72\" (pulse optional).")
	_, err := h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleEditNotes(chatID int64, user *database.User, arg string) error {
	if _, err := strconv.ParseUint(arg, 10, 32); err != nil {
		return h.sendFailure(chatID)
	}

	h.stateManager.SetTempData(user.TelegramID, "edit_reading_id", arg)
	h.stateManager.SetUserState(user.TelegramID, state.WaitingForEditNotes)

	msg := tgbotapi.NewMessage(chatID, "📝 Send the new notes for this reading, or \"-\" to clear them.")
	_, err := h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleDeleteReading(chatID int64, arg string) error {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return h.sendFailure(chatID)
	}

	msg := tgbotapi.NewMessage(chatID, "Delete this reading? This cannot be undone.")
	msg.ReplyMarkup = keyboards.DeleteConfirmation(uint(id))
	_, err = h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleConfirmDelete(ctx context.Context, chatID int64, user *database.User, arg string) error {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return h.sendFailure(chatID)
	}

	if err := h.deps.ReadingSvc.Delete(ctx, user.ID, uint(id)); err != nil {
		h.errHandler.Handle(ctx, err)
		msg := tgbotapi.NewMessage(chatID, "Could not delete that reading. Refreshing the list.")
		if _, err := h.api.Send(msg); err != nil {
			return err
		}
		return h.handleHistory(ctx, chatID, user, 0)
	}

	msg := tgbotapi.NewMessage(chatID, "🗑️ Reading deleted.")
	if _, err := h.api.Send(msg); err != nil {
		return err
	}
	// Reload from server truth, no optimistic local mutation
	return h.handleHistory(ctx, chatID, user, 0)
}

func (h *CallbackHandler) handleDeleteReminder(ctx context.Context, chatID int64, user *database.User, arg string) error {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return h.sendFailure(chatID)
	}

	if err := h.deps.ReminderSvc.Cancel(ctx, user.ID, uint(id)); err != nil {
		h.errHandler.Handle(ctx, err)
	}
	return h.handleReminders(ctx, chatID, user)
}

func (h *CallbackHandler) sendFailure(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Sorry, something went wrong. Please try again.")
	msg.ReplyMarkup = keyboards.BackToMenu()
	_, err := h.api.Send(msg)
	return err
}
