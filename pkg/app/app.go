// Package app holds the HTTP response envelope and request helpers.
package app

import (
	"strings"

	"github.com/callwise/flow-version-service/pkg/code"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Ctx *gin.Context
}

type Pager struct {
	Page      int `json:"page"`      // page number
	PageSize  int `json:"pageSize"`  // page size
	TotalRows int `json:"totalRows"` // total rows
}

type ListRes struct {
	List  interface{} `json:"list"`
	Pager Pager       `json:"pager"`
}

// Res is the unified response envelope: Status is the success flag, Code the
// catalog code, Data the operation result.
type Res struct {
	Code    int         `json:"code"`
	Status  bool        `json:"status"`
	Message interface{} `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func NewResponse(ctx *gin.Context) *Response {
	return &Response{Ctx: ctx}
}

// ToResponse writes a catalog code as the response, mapping its HTTP status.
func (r *Response) ToResponse(codeObj *code.Code) {
	content := Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.Lang.GetMessage(),
		Data:    codeObj.Data(),
	}
	if codeObj.HaveDetails() {
		content.Details = strings.Join(codeObj.Details(), ",")
	}
	r.send(codeObj.StatusCode(), content)
}

// ToResponseList writes a paginated list response.
func (r *Response) ToResponseList(codeObj *code.Code, list interface{}, totalRows int) {
	content := Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.Lang.GetMessage(),
		Data: ListRes{
			List:  list,
			Pager: *NewPager(r.Ctx, totalRows),
		},
	}
	r.send(codeObj.StatusCode(), content)
}

func (r *Response) send(statusCode int, content interface{}) {
	r.Ctx.JSON(statusCode, content)
}
