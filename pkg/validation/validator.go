package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/jobify/internal/domain/entity"
)

// FilterAll is accepted by the *filter tags to mean "no filter".
const FilterAll = "all"

var objectIDPattern = regexp.MustCompile(`^[a-fA-F0-9]{24}$`)

// Init configures the global validator used by Gin's binding.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register installs json tag naming, aliases and the job tags on v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	v.RegisterAlias("pwd", "min=6")
	_ = v.RegisterValidation("jobstatus", func(fl validator.FieldLevel) bool {
		return entity.JobStatus(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("jobtype", func(fl validator.FieldLevel) bool {
		return entity.JobType(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("jobstatusfilter", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == FilterAll || entity.JobStatus(s).IsValid()
	})
	_ = v.RegisterValidation("jobtypefilter", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == FilterAll || entity.JobType(s).IsValid()
	})
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return objectIDPattern.MatchString(fl.Field().String())
	})
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

// Message flattens details into one sentence, fields in alphabetical order.
func Message(details map[string]string) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+details[k])
	}
	return strings.Join(parts, ", ")
}

func formatFieldError(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + param + " characters long"
		}
		return "must be at least " + param
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + param + " characters long"
		}
		return "must be at most " + param
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "jobstatus":
		return "must be one of: " + joinStatuses(false)
	case "jobstatusfilter":
		return "must be one of: " + joinStatuses(true)
	case "jobtype":
		return "must be one of: " + joinTypes(false)
	case "jobtypefilter":
		return "must be one of: " + joinTypes(true)
	case "objectid":
		return "must be a valid id"
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	default:
		return "is invalid"
	}
}

func joinStatuses(withAll bool) string {
	var out []string
	if withAll {
		out = append(out, FilterAll)
	}
	for _, s := range entity.JobStatuses {
		out = append(out, string(s))
	}
	return strings.Join(out, ", ")
}

func joinTypes(withAll bool) string {
	var out []string
	if withAll {
		out = append(out, FilterAll)
	}
	for _, t := range entity.JobTypes {
		out = append(out, string(t))
	}
	return strings.Join(out, ", ")
}
