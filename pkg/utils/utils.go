package utils

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type traceKey struct{}

// IsEmpty checks if a string is empty.
func IsEmpty(s string) bool {
	return s == ""
}

func GetTraceID(c *gin.Context) (string, error) {
	traceID := c.GetString(pkg.TraceId)
	if IsEmpty(traceID) {
		return "", errors.New("trace id is empty")
	}
	return traceID, nil
}

// WithTraceID returns a copy of ctx carrying the trace id.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey{}, traceID)
}

// TraceIDFromContext returns the trace id stored by WithTraceID, or an empty string.
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, _ := ctx.Value(traceKey{}).(string)
	return traceID
}

// ParseStructEnv binds env vars to struct fields using a mapstructure tag
func ParseStructEnv(cfg interface{}) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if IsEmpty(tag) {
			continue
		}
		if err := viper.BindEnv(tag); err != nil {
			return err
		}
	}
	return viper.Unmarshal(cfg)
}

// FormatConfigErrors logs each failed validation rule against its env key and
// returns a single error naming all offending keys.
func FormatConfigErrors(logger *zap.Logger, err error, cfg interface{}) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		logger.Error("invalid configuration", zap.Error(err))
		return fmt.Errorf("invalid configuration: %w", err)
	}

	t := reflect.TypeOf(cfg)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	keys := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		key := fe.Field()
		if field, ok := t.FieldByName(fe.StructField()); ok {
			if tag := field.Tag.Get("mapstructure"); !IsEmpty(tag) {
				key = tag
			}
		}
		logger.Error("invalid configuration value",
			zap.String("key", key),
			zap.String("rule", fe.Tag()),
			zap.String("param", fe.Param()),
			zap.Any("value", fe.Value()),
		)
		keys = append(keys, fmt.Sprintf("%s(%s)", key, fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(keys, ", "))
}
