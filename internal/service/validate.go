package service

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

const minPasswordLen = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	validate  = newValidator()
	sanitizer = bluemonday.StrictPolicy()
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

func validEmail(email string) bool {
	return validate.Var(email, "required,emailshape") == nil
}

func validPassword(pw string) bool {
	return validate.Var(pw, fmt.Sprintf("min=%d", minPasswordLen)) == nil
}

func validUsername(name string) bool {
	return validate.Var(name, "required,max=64,excludesall= /@") == nil
}

// 每轮解码一层实体；超过此轮数仍未收敛的输入去掉全部尖括号
const maxSanitizeRounds = 16

var angleBrackets = strings.NewReplacer("<", "", ">", "")

// sanitize 去掉 HTML 标签并去除首尾空白，结果为纯文本（& < 等不转义）。
// 实体编码的标签（&lt;script&gt;）解码后同样会被去掉：反复清洗直到结果不再变化。
func sanitize(s string) string {
	out := s
	for i := 0; i < maxSanitizeRounds; i++ {
		next := html.UnescapeString(sanitizer.Sanitize(out))
		if next == out {
			return strings.TrimSpace(out)
		}
		out = next
	}
	return strings.TrimSpace(angleBrackets.Replace(out))
}
