package code

import "net/http"

// lang stores the English and Chinese text of a message.
// lang 类型，用来存储英文和中文文本
type lang struct {
	en    string // English // 英文
	zh_cn string // Chinese // 中文
}

// Default language is English // 默认语言为英文
var lng = "en"

// SetLang switches the catalog language ("en" or "zh-cn").
func SetLang(l string) {
	if l == "zh-cn" || l == "en" {
		lng = l
	}
}

// GetMessage returns the message in the active language.
func (l lang) GetMessage() string {
	if lng == "zh-cn" && l.zh_cn != "" {
		return l.zh_cn
	}
	return l.en
}

var (
	Success = NewSuss(0, lang{"Success", "成功"})

	// request / validation
	ErrorInvalidParams  = NewError(10001, http.StatusBadRequest, lang{"Invalid request parameters", "请求参数错误"})
	ErrorInvalidPayload = NewError(10002, http.StatusBadRequest, lang{"Flow payload is structurally invalid", "流程载荷结构无效"})
	ErrorInvalidPolicy  = NewError(10003, http.StatusBadRequest, lang{"Archive policy configuration is invalid", "归档策略配置无效"})

	// auth
	ErrorInvalidActorToken = NewError(10100, http.StatusUnauthorized, lang{"Invalid or expired actor token", "操作者令牌无效或已过期"})

	// not found
	ErrorNotFoundAPI     = NewError(10004, http.StatusNotFound, lang{"API route not found", "接口不存在"})
	ErrorFlowNotFound    = NewError(10200, http.StatusNotFound, lang{"Flow not found", "流程不存在"})
	ErrorVersionNotFound = NewError(10201, http.StatusNotFound, lang{"Flow version not found", "流程版本不存在"})

	// invalid state / argument
	ErrorRollbackToHead  = NewError(10300, http.StatusBadRequest, lang{"Target version is already the current head", "目标版本已是当前头版本"})
	ErrorArchiveHead     = NewError(10301, http.StatusBadRequest, lang{"The current head version cannot be archived", "当前头版本不能被归档"})
	ErrorPurgeActive     = NewError(10302, http.StatusBadRequest, lang{"Only archived versions can be purged", "只有已归档的版本才能被清除"})
	ErrorVersionPurged   = NewError(10303, http.StatusBadRequest, lang{"Version payload has been purged", "版本载荷已被清除"})

	// conflict
	ErrorVersionConflict = NewError(10400, http.StatusConflict, lang{"Version number allocation conflict", "版本号分配冲突"})

	// storage / internal
	ErrorDBQuery        = NewError(10500, http.StatusInternalServerError, lang{"Database query error", "数据库查询错误"})
	ErrorServerInternal = NewError(10501, http.StatusInternalServerError, lang{"Internal server error", "服务内部错误"})
)
