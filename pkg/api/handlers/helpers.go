package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"synapse/pkg/models"
)

func jsonEncode(w io.Writer, v interface{}) error {
	return json.NewEncoder(w).Encode(v)
}

// failStatus maps a failed AuthResponse to an HTTP status. Messages are
// the contract here: the service deliberately reports outcomes, not
// errors, so the HTTP layer classifies by message.
func failStatus(resp models.AuthResponse) int {
	switch resp.Message {
	case "邮箱或密码错误", "未提供认证令牌", "无效的认证令牌", "未提供刷新令牌", "无效的刷新令牌":
		return http.StatusUnauthorized
	case "该邮箱已被注册", "该用户名已被使用":
		return http.StatusConflict
	case "无效的用户ID格式":
		return http.StatusBadRequest
	case "服务器内部错误":
		return http.StatusInternalServerError
	}
	if strings.Contains(resp.Message, "不存在") {
		return http.StatusNotFound
	}
	// Validation messages (empty fields, bad formats, weak passwords).
	return http.StatusBadRequest
}

// writeAuth writes an AuthResponse with okStatus on success and the
// mapped status on failure. The envelope itself is always the body.
func writeAuth(w http.ResponseWriter, resp models.AuthResponse, okStatus int) {
	status := okStatus
	if !resp.Success {
		status = failStatus(resp)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsonEncode(w, resp)
}
