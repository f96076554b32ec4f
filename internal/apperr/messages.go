package apperr

import "strings"

const (
	KeyInternal            = "internal"
	KeyValidationFailed    = "validation_failed"
	KeyInvalidBody         = "invalid_body"
	KeyInvalidID           = "invalid_id"
	KeyMissingAuthHeader   = "missing_auth_header"
	KeyInvalidToken        = "invalid_token"
	KeyInvalidRefreshToken = "invalid_refresh_token"
	KeyUserNotFound        = "user_not_found"
	KeyInvalidCredentials  = "invalid_credentials"
	KeyEmailTaken          = "email_taken"
	KeyFamilyNotFound      = "family_not_found"
	KeyInvalidInviteCode   = "invalid_invite_code"
	KeyAlreadyMember       = "already_member"
	KeyNotFamilyMember     = "not_family_member"
	KeyAssigneeNotMember   = "assignee_not_member"
	KeyTaskNotFound        = "task_not_found"
	KeyTaskAlreadyDone     = "task_already_completed"
	KeyDeleteNotAllowed    = "delete_not_allowed"
	KeyInviteCodeExhausted = "invite_code_exhausted"
	KeyNotificationMissing = "notification_not_found"
	KeyRateLimited         = "rate_limited"
	KeyInvalidSort         = "invalid_sort"
	KeyImageMissing        = "image_missing"
	KeyImageType           = "image_type"
	KeyImageTooLarge       = "image_too_large"
	KeyAdminOnly           = "admin_only"
	KeyMemberNotFound      = "member_not_found"
	KeyCannotRemoveSelf    = "cannot_remove_self"
	KeyLastAdmin           = "last_admin"
)

const (
	LocaleEN = "en"
	LocaleZH = "zh"
)

var catalog = map[string]map[string]string{
	LocaleEN: {
		KeyInternal:            "Something went wrong, please try again later",
		KeyValidationFailed:    "Validation failed",
		KeyInvalidBody:         "Invalid request body",
		KeyInvalidID:           "Invalid ID",
		KeyMissingAuthHeader:   "Missing or invalid authorization header",
		KeyInvalidToken:        "Invalid or expired token",
		KeyInvalidRefreshToken: "Invalid refresh token",
		KeyUserNotFound:        "User not found",
		KeyInvalidCredentials:  "Invalid email or password",
		KeyEmailTaken:          "This email is already registered",
		KeyFamilyNotFound:      "Family not found",
		KeyInvalidInviteCode:   "Invalid invite code",
		KeyAlreadyMember:       "You are already a member of this family",
		KeyNotFamilyMember:     "You are not a member of this family",
		KeyAssigneeNotMember:   "The assigned user is not a member of this family",
		KeyTaskNotFound:        "Task not found",
		KeyTaskAlreadyDone:     "Task is already completed",
		KeyDeleteNotAllowed:    "No permission to delete this task",
		KeyInviteCodeExhausted: "Could not generate a unique invite code",
		KeyNotificationMissing: "Notification not found",
		KeyRateLimited:         "Too many requests, slow down",
		KeyInvalidSort:         "Sort must be one of dueDate, priority or completion",
		KeyImageMissing:        "No image file provided",
		KeyImageType:           "Only jpg, png, and webp images are allowed",
		KeyImageTooLarge:       "Image must be under 5MB",
		KeyAdminOnly:           "Only a family admin can do this",
		KeyMemberNotFound:      "Member not found",
		KeyCannotRemoveSelf:    "Use leave to remove yourself from a family",
		KeyLastAdmin:           "The last admin cannot leave the family",
	},
	LocaleZH: {
		KeyInternal:            "發生錯誤，請稍後再試",
		KeyValidationFailed:    "驗證失敗",
		KeyInvalidBody:         "無效的請求內容",
		KeyInvalidID:           "無效的ID",
		KeyMissingAuthHeader:   "缺少或無效的授權標頭",
		KeyInvalidToken:        "無效或已過期的憑證",
		KeyInvalidRefreshToken: "無效的刷新憑證",
		KeyUserNotFound:        "找不到用戶",
		KeyInvalidCredentials:  "電子郵件或密碼不正確",
		KeyEmailTaken:          "此電子郵件已被註冊",
		KeyFamilyNotFound:      "找不到家庭",
		KeyInvalidInviteCode:   "無效的邀請碼",
		KeyAlreadyMember:       "您已經是該家庭的成員",
		KeyNotFamilyMember:     "您不是該家庭的成員",
		KeyAssigneeNotMember:   "被分配的用戶不是該家庭的成員",
		KeyTaskNotFound:        "找不到任務",
		KeyTaskAlreadyDone:     "任務已完成",
		KeyDeleteNotAllowed:    "沒有權限刪除此任務",
		KeyInviteCodeExhausted: "無法產生唯一的邀請碼",
		KeyNotificationMissing: "找不到通知",
		KeyRateLimited:         "請求過於頻繁，請稍後再試",
		KeyInvalidSort:         "排序方式必須是 dueDate、priority 或 completion",
		KeyImageMissing:        "未提供圖片檔案",
		KeyImageType:           "僅允許 jpg、png 和 webp 圖片",
		KeyImageTooLarge:       "圖片必須小於 5MB",
		KeyAdminOnly:           "只有家庭管理員可以執行此操作",
		KeyMemberNotFound:      "找不到成員",
		KeyCannotRemoveSelf:    "請使用離開家庭來移除自己",
		KeyLastAdmin:           "最後一位管理員不能離開家庭",
	},
}

// NormalizeLocale folds tags like "zh-TW" or "en-US,en;q=0.9" to a supported
// locale, defaulting to English.
func NormalizeLocale(locale string) string {
	l := strings.ToLower(strings.TrimSpace(locale))
	if strings.HasPrefix(l, LocaleZH) {
		return LocaleZH
	}
	return LocaleEN
}

// Text looks up a message key, falling back to English and then the key.
func Text(key, locale string) string {
	if msg, ok := catalog[NormalizeLocale(locale)][key]; ok {
		return msg
	}
	if msg, ok := catalog[LocaleEN][key]; ok {
		return msg
	}
	return key
}
