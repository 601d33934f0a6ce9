package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	assert.True(t, Email("a@b.co").Valid())
	assert.Equal(t, []string{"邮箱地址不能为空"}, Email("").Errors)
	assert.Equal(t, []string{"请输入有效的邮箱地址"}, Email("not-an-email").Errors)
	assert.Equal(t, []string{"请输入有效的邮箱地址"}, Email("a b@c.d").Errors)
	long := strings.Repeat("a", 250) + "@b.co"
	assert.Equal(t, []string{"邮箱地址过长"}, Email(long).Errors)
}

func TestPassword(t *testing.T) {
	assert.True(t, Password("Abc123").Valid())
	assert.Equal(t, []string{"密码不能为空"}, Password("").Errors)
	assert.Contains(t, Password("Ab1").Errors, "密码至少需要6个字符")
	assert.Contains(t, Password("ABC123").Errors, "密码必须包含至少一个小写字母")
	assert.Contains(t, Password("abc123").Errors, "密码必须包含至少一个大写字母")
	assert.Contains(t, Password("Abcdef").Errors, "密码必须包含至少一个数字")
	assert.Contains(t, Password(strings.Repeat("Ab1", 50)).Errors, "密码过长")
}

func TestPasswordCollectsAllViolations(t *testing.T) {
	r := Password("abc")
	// short, no uppercase, no digit
	assert.Len(t, r.Errors, 3)
	assert.False(t, r.Valid())
}

func TestUsername(t *testing.T) {
	assert.True(t, Username("alice_01").Valid())
	assert.True(t, Username("张三").Valid())
	assert.Equal(t, []string{"用户名不能为空"}, Username("").Errors)
	assert.Contains(t, Username("a").Errors, "用户名至少需要2个字符")
	assert.Contains(t, Username(strings.Repeat("甲", 31)).Errors, "用户名不能超过30个字符")
	assert.Contains(t, Username("bad name").Errors, "用户名只能包含字母、数字、下划线和中文字符")
	assert.Contains(t, Username("no-dash").Errors, "用户名只能包含字母、数字、下划线和中文字符")
}

func TestUsernameCountsRunes(t *testing.T) {
	// 30 CJK runes is within the cap even though it is 90 bytes
	assert.True(t, Username(strings.Repeat("甲", 30)).Valid())
}

func TestRegistrationOrder(t *testing.T) {
	r := Registration("", "", "")
	assert.Equal(t, []string{"邮箱地址不能为空", "用户名不能为空", "密码不能为空"}, r.Errors)
	assert.Equal(t, "邮箱地址不能为空, 用户名不能为空, 密码不能为空", r.Message())
}

func TestLogin(t *testing.T) {
	assert.True(t, Login("a@b.co", "x").Valid())
	// login never applies strength rules, only presence
	assert.True(t, Login("a@b.co", "weak").Valid())
	assert.Equal(t, []string{"邮箱地址不能为空", "密码不能为空"}, Login("", "").Errors)
}
