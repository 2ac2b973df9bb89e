package handlers

import (
	"context"
	"fmt"
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
	"github.com/vladimiradmaev/bp-assistant/internal/services"
)

// TextHandler handles plain text messages driven by the conversation state
type TextHandler struct {
	api          *tgbotapi.BotAPI
	deps         Dependencies
	stateManager state.StateManager
	errHandler   *apperrors.Handler
}

// NewTextHandler creates a new text handler
func NewTextHandler(api *tgbotapi.BotAPI, deps Dependencies, stateManager state.StateManager) *TextHandler {
	return &TextHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
		errHandler:   apperrors.NewHandler(logger.GetLogger()),
	}
}

// Handle processes a text message according to the user's current state
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message, user *database.User) error {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	switch h.stateManager.GetUserState(user.TelegramID) {
	case state.WaitingForEditValues:
		return h.handleEditValues(ctx, chatID, user, text)
	case state.WaitingForEditNotes:
		return h.handleEditNotes(ctx, chatID, user, text)
	case state.WaitingForProfileDOB:
		return h.handleProfileDOB(chatID, user, text)
	case state.WaitingForProfileWeight:
		return h.handleProfileWeight(chatID, user, text)
	case state.WaitingForProfileHeight:
		return h.handleProfileHeight(chatID, user, text)
	case state.WaitingForProfileCondition:
		return h.handleProfileConditions(chatID, user, text)
	case state.WaitingForProfileMeds:
		return h.handleProfileMeds(chatID, user, text)
	case state.WaitingForProfileContact:
		return h.handleProfileContact(ctx, chatID, user, text)
	case state.WaitingForDailyReminder:
		return h.handleDailyReminder(ctx, chatID, user, text)
	case state.WaitingForWeeklyReminder:
		return h.handleWeeklyReminder(ctx, chatID, user, text)
	default:
		msg := tgbotapi.NewMessage(chatID, "Please use the menu, or send a photo of your monitor.")
		msg.ReplyMarkup = keyboards.MainMenu()
		_, err := h.api.Send(msg)
		return err
	}
}

func (h *TextHandler) handleEditValues(ctx context.Context, chatID int64, user *database.User, text string) error {
	readingID, ok := h.tempReadingID(user.TelegramID)
	if !ok {
		h.stateManager.SetUserState(user.TelegramID, state.None)
		return h.sendFailure(chatID)
	}

	systolic, diastolic, pulse, err := parseReadingValues(text)
	if err != nil {
		msg := tgbotapi.NewMessage(chatID, "I could not parse that. Send the values as \"130/85 72\" (pulse optional).")
		_, err := h.api.Send(msg)
		return err
	}

	patch := services.ReadingPatch{Systolic: &systolic, Diastolic: &diastolic}
	if pulse > 0 {
		patch.Pulse = &pulse
	}

	updated, err := h.deps.ReadingSvc.Update(ctx, user.ID, readingID, patch)
	if err != nil {
		h.errHandler.Handle(ctx, err)
		if apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			// Keep the edit state so the user can just resend
			msg := tgbotapi.NewMessage(chatID, "Those values are out of range. Send something like \"130/85 72\".")
			_, err := h.api.Send(msg)
			return err
		}
		h.stateManager.SetUserState(user.TelegramID, state.None)
		return h.sendFailure(chatID)
	}

	h.stateManager.SetUserState(user.TelegramID, state.None)
	h.stateManager.ClearTempData(user.TelegramID)

	return sendSavedReading(h.api, chatID, updated)
}

func (h *TextHandler) handleEditNotes(ctx context.Context, chatID int64, user *database.User, text string) error {
	readingID, ok := h.tempReadingID(user.TelegramID)
	if !ok {
		h.stateManager.SetUserState(user.TelegramID, state.None)
		return h.sendFailure(chatID)
	}

	notes := text
	if notes == "-" {
		notes = ""
	}

	patch := services.ReadingPatch{Notes: &notes}
	if _, err := h.deps.ReadingSvc.Update(ctx, user.ID, readingID, patch); err != nil {
		h.errHandler.Handle(ctx, err)
		h.stateManager.SetUserState(user.TelegramID, state.None)
		return h.sendFailure(chatID)
	}

	h.stateManager.SetUserState(user.TelegramID, state.None)
	h.stateManager.ClearTempData(user.TelegramID)

	msg := tgbotapi.NewMessage(chatID, "📝 Notes updated.")
	msg.ReplyMarkup = keyboards.BackToMenu()
	_, err := h.api.Send(msg)
	return err
}

func (h *TextHandler) handleProfileDOB(chatID int64, user *database.User, text string) error {
	if text != "-" {
		if _, err := time.Parse("2006-01-02", text); err != nil {
			msg := tgbotapi.NewMessage(chatID, "Please send the date as YYYY-MM-DD, for example 1964-03-21, or \"-\" to skip.")
			_, err := h.api.Send(msg)
			return err
		}
		h.stateManager.SetTempData(user.TelegramID, "profile_dob", text)
	}
	h.stateManager.SetUserState(user.TelegramID, state.WaitingForProfileWeight)

	msg := tgbotapi.NewMessage(chatID, "⚖️ Your weight in kg (for example 82.5), or \"-\" to skip.")
	_, err := h.api.Send(msg)
	return err
}

func (h *TextHandler) handleProfileWeight(chatID int64, user *database.User, text string) error {
	if text != "-" {
		weight, err := strconv.ParseFloat(text, 64)
		if err != nil || weight <= 0 || weight > 500 {
			msg := tgbotapi.NewMessage(chatID, "Please send your weight in kg as a number, or \"-\" to skip.")
			_, err := h.api.Send(msg)
			return err
		}
		h.stateManager.SetTempData(user.TelegramID, "profile_weight", text)
	}
	h.stateManager.SetUserState(user.TelegramID, state.WaitingForProfileHeight)

	msg := tgbotapi.NewMessage(chatID, "📏 Your height in cm (for example 178), or \"-\" to skip.")
	_, err := h.api.Send(msg)
	return err
}

func (h *TextHandler) handleProfileHeight(chatID int64, user *database.User, text string) error {
	if text != "-" {
		height, err := strconv.ParseFloat(text, 64)
		if err != nil || height <= 0 || height > 300 {
			msg := tgbotapi.NewMessage(chatID, "Please send your height in cm as a number, or \"-\" to skip.")
			_, err := h.api.Send(msg)
			return err
		}
		h.stateManager.SetTempData(user.TelegramID, "profile_height", text)
	}
	// The flow continues from the gender callback
	h.stateManager.SetUserState(user.TelegramID, state.None)

	msg := tgbotapi.NewMessage(chatID, "Your gender:")
	msg.ReplyMarkup = keyboards.Gender()
	_, err := h.api.Send(msg)
	return err
}

func (h *TextHandler) handleProfileConditions(chatID int64, user *database.User, text string) error {
	if text != "-" {
		h.stateManager.SetTempData(user.TelegramID, "profile_conditions", text)
	}
	h.stateManager.SetUserState(user.TelegramID, state.WaitingForProfileMeds)

	msg := tgbotapi.NewMessage(chatID, "💊 List your medications separated by commas, or \"-\" if none.")
	_, err := h.api.Send(msg)
	return err
}

func (h *TextHandler) handleProfileMeds(chatID int64, user *database.User, text string) error {
	if text != "-" {
		h.stateManager.SetTempData(user.TelegramID, "profile_medications", text)
	}
	h.stateManager.SetUserState(user.TelegramID, state.WaitingForProfileContact)

	msg := tgbotapi.NewMessage(chatID, "🆘 Emergency contact as \"Name, phone\", or \"-\" to skip.")
	_, err := h.api.Send(msg)
	return err
}

func (h *TextHandler) handleProfileContact(ctx context.Context, chatID int64, user *database.User, text string) error {
	input := services.ProfileInput{
		Gender: h.tempString(user.TelegramID, "profile_gender"),
	}

	if dob := h.tempString(user.TelegramID, "profile_dob"); dob != "" {
		parsed, err := time.Parse("2006-01-02", dob)
		if err == nil {
			input.DateOfBirth = &parsed
		}
	}
	if weight := h.tempString(user.TelegramID, "profile_weight"); weight != "" {
		if w, err := strconv.ParseFloat(weight, 64); err == nil {
			input.WeightKg = w
		}
	}
	if height := h.tempString(user.TelegramID, "profile_height"); height != "" {
		if hc, err := strconv.ParseFloat(height, 64); err == nil {
			input.HeightCm = hc
		}
	}
	input.Conditions = splitList(h.tempString(user.TelegramID, "profile_conditions"))
	input.Medications = splitList(h.tempString(user.TelegramID, "profile_medications"))

	if text != "-" {
		name, phone, found := strings.Cut(text, ",")
		if !found {
			msg := tgbotapi.NewMessage(chatID, "Please send the contact as \"Name, phone\", or \"-\" to skip.")
			_, err := h.api.Send(msg)
			return err
		}
		input.EmergencyContactName = strings.TrimSpace(name)
		input.EmergencyContactPhone = strings.TrimSpace(phone)
	}

	h.stateManager.SetUserState(user.TelegramID, state.None)
	h.stateManager.ClearTempData(user.TelegramID)

	profile, err := h.deps.ProfileSvc.Upsert(ctx, user.ID, input)
	if err != nil {
		h.errHandler.Handle(ctx, err)
		return h.sendFailure(chatID)
	}

	msg := tgbotapi.NewMessage(chatID, "✅ Profile saved.")
	if _, err := h.api.Send(msg); err != nil {
		return err
	}
	return menus.SendProfile(h.api, chatID, profile)
}

func (h *TextHandler) handleDailyReminder(ctx context.Context, chatID int64, user *database.User, text string) error {
	hour, minute, err := parseHHMM(text)
	if err != nil {
		msg := tgbotapi.NewMessage(chatID, "Please send the time as HH:MM, for example 08:30.")
		_, err := h.api.Send(msg)
		return err
	}

	h.stateManager.SetUserState(user.TelegramID, state.None)

	if _, err := h.deps.ReminderSvc.ScheduleDaily(ctx, user.ID, hour, minute); err != nil {
		h.errHandler.Handle(ctx, err)
		return h.sendFailure(chatID)
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("⏰ Daily reminder set for %02d:%02d.", hour, minute))
	if _, err := h.api.Send(msg); err != nil {
		return err
	}
	reminders, err := h.deps.ReminderSvc.List(ctx, user.ID)
	if err != nil {
		h.errHandler.Handle(ctx, err)
		return nil
	}
	return menus.SendReminders(h.api, chatID, reminders)
}

func (h *TextHandler) handleWeeklyReminder(ctx context.Context, chatID int64, user *database.User, text string) error {
	hour, minute, err := parseHHMM(text)
	if err != nil {
		msg := tgbotapi.NewMessage(chatID, "Please send the time as HH:MM, for example 08:30.")
		_, err := h.api.Send(msg)
		return err
	}

	weekday, ok := h.tempInt(user.TelegramID, "reminder_weekday")
	if !ok || weekday < 0 || weekday > 6 {
		h.stateManager.SetUserState(user.TelegramID, state.None)
		return h.sendFailure(chatID)
	}

	h.stateManager.SetUserState(user.TelegramID, state.None)
	h.stateManager.ClearTempData(user.TelegramID)

	if _, err := h.deps.ReminderSvc.ScheduleWeekly(ctx, user.ID, time.Weekday(weekday), hour, minute); err != nil {
		h.errHandler.Handle(ctx, err)
		return h.sendFailure(chatID)
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("⏰ Weekly reminder set for %02d:%02d.", hour, minute))
	if _, err := h.api.Send(msg); err != nil {
		return err
	}
	reminders, err := h.deps.ReminderSvc.List(ctx, user.ID)
	if err != nil {
		h.errHandler.Handle(ctx, err)
		return nil
	}
	return menus.SendReminders(h.api, chatID, reminders)
}

func (h *TextHandler) tempReadingID(telegramID int64) (uint, bool) {
	raw := h.tempString(telegramID, "edit_reading_id")
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func (h *TextHandler) tempString(telegramID int64, key string) string {
	value, ok := h.stateManager.GetTempData(telegramID, key)
	if !ok {
		return ""
	}
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return s
}

// tempInt reads a numeric temp value. The Redis-backed manager round-trips
// numbers through JSON, which yields float64.
func (h *TextHandler) tempInt(telegramID int64, key string) (int, bool) {
	value, ok := h.stateManager.GetTempData(telegramID, key)
	if !ok {
		return 0, false
	}
	switch v := value.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func (h *TextHandler) sendFailure(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Sorry, something went wrong. Please try again.")
	msg.ReplyMarkup = keyboards.BackToMenu()
	_, err := h.api.Send(msg)
	return err
}

// parseReadingValues parses "130/85 72" or "130/85" style input.
func parseReadingValues(text string) (systolic, diastolic, pulse int, err error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, 0, 0, fmt.Errorf("expected \"sys/dia [pulse]\", got %q", text)
	}

	sysStr, diaStr, found := strings.Cut(fields[0], "/")
	if !found {
		return 0, 0, 0, fmt.Errorf("expected \"sys/dia\", got %q", fields[0])
	}

	systolic, err = strconv.Atoi(strings.TrimSpace(sysStr))
	if err != nil {
		return 0, 0, 0, err
	}
	diastolic, err = strconv.Atoi(strings.TrimSpace(diaStr))
	if err != nil {
		return 0, 0, 0, err
	}
	if len(fields) == 2 {
		pulse, err = strconv.Atoi(fields[1])
		if err != nil {
			return 0, 0, 0, err
		}
	}
	if systolic <= 0 || diastolic <= 0 || pulse < 0 {
		return 0, 0, 0, fmt.Errorf("values must be positive")
	}
	return systolic, diastolic, pulse, nil
}

func parseHHMM(text string) (hour, minute int, err error) {
	hourStr, minuteStr, found := strings.Cut(strings.TrimSpace(text), ":")
	if !found {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", text)
	}
	hour, err = strconv.Atoi(hourStr)
	if err != nil {
		return 0, 0, err
	}
	minute, err = strconv.Atoi(minuteStr)
	if err != nil {
		return 0, 0, err
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time out of range: %02d:%02d", hour, minute)
	}
	return hour, minute, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
