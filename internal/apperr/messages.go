package apperr

import "strings"

// Code identifies a user-facing error message.
type Code string

const (
	CodeBadRequest            Code = "bad_request"
	CodePaymentFieldsRequired Code = "payment_fields_required"
	CodePaymentCreateFailed   Code = "payment_create_failed"
	CodePaymentIDRequired     Code = "payment_id_required"
	CodePaymentLookupFailed   Code = "payment_lookup_failed"
	CodePurchaseNotFound      Code = "purchase_not_found"
	CodeStudioRequired        Code = "studio_required"
	CodeLeadFieldsRequired    Code = "lead_fields_required"
	CodeLeadCreateFailed      Code = "lead_create_failed"
	CodeMessageRequired       Code = "message_required"
	CodeSupportUnavailable    Code = "support_unavailable"
	CodeSupportNoReply        Code = "support_no_reply"
	CodeSignupFieldsRequired  Code = "signup_fields_required"
	CodeSignupFailed          Code = "signup_failed"
	CodeUnauthorized          Code = "unauthorized"
	CodeInvalidToken          Code = "invalid_token"
	CodeTooManyRequests       Code = "too_many_requests"
	CodeServerError           Code = "server_error"
)

var messages = map[Code][2]string{
	CodeBadRequest:            {"Некорректный запрос", "Invalid request"},
	CodePaymentFieldsRequired: {"Не хватает данных для оплаты", "Missing payment details"},
	CodePaymentCreateFailed:   {"Ошибка на сервере при создании оплаты", "Server error while creating the payment"},
	CodePaymentIDRequired:     {"Не указан paymentId", "paymentId is required"},
	CodePaymentLookupFailed:   {"Не удалось проверить оплату", "Could not check the payment"},
	CodePurchaseNotFound:      {"Покупка не найдена", "Purchase not found"},
	CodeStudioRequired:        {"Не указан studioId", "studioId is required"},
	CodeLeadFieldsRequired:    {"Не хватает данных: fullName, phone, city, studio обязательны", "Missing fields: fullName, phone, city and studio are required"},
	CodeLeadCreateFailed:      {"Не удалось сохранить заявку", "Could not save the request"},
	CodeMessageRequired:       {"Поле message обязательно", "The message field is required"},
	CodeSupportUnavailable:    {"Ошибка на стороне бота поддержки", "The support bot failed to answer"},
	CodeSupportNoReply:        {"Бот не прислал ответа. Попробуй ещё раз.", "The bot did not reply. Please try again."},
	CodeSignupFieldsRequired:  {"Укажите имя или email", "Name or email is required"},
	CodeSignupFailed:          {"Не удалось отправить заявку", "Could not send the application"},
	CodeUnauthorized:          {"Требуется токен доступа", "Missing bearer token"},
	CodeInvalidToken:          {"Ссылка недействительна или устарела", "Invalid or expired link token"},
	CodeTooManyRequests:       {"Слишком много запросов, попробуйте позже", "Too many requests, please try again later"},
	CodeServerError:           {"Внутренняя ошибка сервера", "Internal server error"},
}

// Message returns the text for code in the language picked from an
// Accept-Language header: English when it starts with "en", Russian
// otherwise.
func Message(code Code, acceptLanguage string) string {
	m, ok := messages[code]
	if !ok {
		m = messages[CodeServerError]
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(acceptLanguage)), "en") {
		return m[1]
	}
	return m[0]
}
