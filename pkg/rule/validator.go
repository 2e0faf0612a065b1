// Package rule 封装 go-playground/validator，统一使用 rule 标签校验请求结构体.
package rule

import (
	"errors"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// TagName 结构体上的校验标签.
const TagName = "rule"

// engine 优先复用 gin 的校验实例，使绑定与手动校验共享同一套规则.
var engine = sync.OnceValue(func() *validator.Validate {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok || v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}

	v.SetTagName(TagName)

	// notblank 拒绝只有空白字符的字符串
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}

	return v
})

// gin 的 ShouldBind 与 ValidateStruct 共用同一实例，类型的校验规则在首次校验时按当前标签缓存，
// 必须在任何请求绑定之前切换到 rule 标签.
func init() {
	engine()
}

// Engine 返回共享的校验实例.
func Engine() *validator.Validate {
	return engine()
}

// RegisterValidation 注册自定义规则.
func RegisterValidation(tag string, fn validator.Func, callEvenIfNull ...bool) error {
	return engine().RegisterValidation(tag, fn, callEvenIfNull...)
}

// RegisterAlias 把一组规则注册为别名，如 RegisterAlias("project_name", "required,notblank,max=255").
func RegisterAlias(alias, rules string) {
	engine().RegisterAlias(alias, rules)
}

func ValidateStruct(s any) error {
	return engine().Struct(s)
}

// ValidateVar 按规则校验单个值，如 ValidateVar(port, "min=1,max=65535").
func ValidateVar(field any, tag string) error {
	return engine().Var(field, tag)
}

// Fields 返回校验失败的字段名，err 不是校验错误时返回 nil.
func Fields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		names = append(names, fe.Field())
	}

	return names
}
