package middleware

import (
	"strings"

	"github.com/callwise/flow-version-service/pkg/code"

	ut "github.com/go-playground/universal-translator"
	"github.com/gin-gonic/gin"
)

// LangWithTranslator selects the validator translator and catalog language
// from the Accept-Language header.
func LangWithTranslator(uni *ut.UniversalTranslator) gin.HandlerFunc {
	return func(c *gin.Context) {
		locale := "en"
		accept := c.GetHeader("Accept-Language")
		if strings.HasPrefix(strings.ToLower(accept), "zh") {
			locale = "zh"
			code.SetLang("zh-cn")
		} else {
			code.SetLang("en")
		}
		if uni != nil {
			trans, _ := uni.GetTranslator(locale)
			c.Set("trans", trans)
		}
		c.Next()
	}
}
