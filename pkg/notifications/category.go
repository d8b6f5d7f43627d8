package notifications

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Category identifies the kind of domain event a notification describes.
// Categories are data: adding one means adding a registry entry, not code.
type Category string

const (
	CategoryLike             Category = "LIKE"
	CategoryComment          Category = "COMMENT"
	CategoryFollow           Category = "FOLLOW"
	CategoryClubJoin         Category = "CLUB_JOIN"
	CategoryClubInvite       Category = "CLUB_INVITE"
	CategoryScheduleReminder Category = "SCHEDULE_REMINDER"
	CategoryChatMessage      Category = "CHAT_MESSAGE"
	CategoryAnnouncement     Category = "ANNOUNCEMENT"
)

func (c Category) String() string { return string(c) }

// DeliveryPolicy selects the transports a notification type is delivered over.
type DeliveryPolicy string

const (
	PolicyPushOnly   DeliveryPolicy = "PUSH_ONLY"
	PolicyStreamOnly DeliveryPolicy = "STREAM_ONLY"
	PolicyBoth       DeliveryPolicy = "BOTH"
)

// Valid reports whether p is one of the known policies.
func (p DeliveryPolicy) Valid() bool {
	switch p {
	case PolicyPushOnly, PolicyStreamOnly, PolicyBoth:
		return true
	}
	return false
}

// IncludesPush reports whether the external push gateway should be used.
func (p DeliveryPolicy) IncludesPush() bool {
	return p == PolicyPushOnly || p == PolicyBoth
}

// IncludesStream reports whether live stream connections should be used.
func (p DeliveryPolicy) IncludesStream() bool {
	return p == PolicyStreamOnly || p == PolicyBoth
}

// NotificationType is an immutable catalog entry mapping a category to its
// message template and delivery policy.
type NotificationType struct {
	ID       int64          `json:"id" yaml:"-"`
	Category Category       `json:"category" yaml:"category"`
	Template string         `json:"template" yaml:"template"`
	Policy   DeliveryPolicy `json:"policy" yaml:"policy"`
}

// NewNotificationType validates its arguments and builds a catalog entry.
func NewNotificationType(category Category, template string, policy DeliveryPolicy) (NotificationType, error) {
	t := NotificationType{Category: category, Template: template, Policy: policy}
	if err := t.Validate(); err != nil {
		return NotificationType{}, err
	}
	return t, nil
}

// Validate checks that category, template and policy are all present and
// that the template only uses verbs fmt understands.
func (t NotificationType) Validate() error {
	var errs []error
	if strings.TrimSpace(string(t.Category)) == "" {
		errs = append(errs, errors.New("category is required"))
	}
	if strings.TrimSpace(t.Template) == "" {
		errs = append(errs, errors.New("template is required"))
	} else if _, err := arity(t.Template); err != nil {
		errs = append(errs, err)
	}
	if t.Policy == "" {
		errs = append(errs, errors.New("delivery policy is required"))
	} else if !t.Policy.Valid() {
		errs = append(errs, fmt.Errorf("unknown delivery policy %q", t.Policy))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrValidation}, errs...)...)
	}
	return nil
}

// Render substitutes args into the template using fmt verbs, including
// explicit indexes such as %[1]s. With no args the template is returned as
// is. A mismatch between the args and the arguments the template consumes,
// or an arg the verb cannot format, yields ErrFormat.
func (t NotificationType) Render(args ...any) (string, error) {
	if len(args) == 0 {
		return t.Template, nil
	}
	n, err := arity(t.Template)
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, t.Category)
	}
	if n != len(args) {
		return "", fmt.Errorf("%w: %s expects %d argument(s), got %d", ErrFormat, t.Category, n, len(args))
	}

	out := fmt.Sprintf(t.Template, args...)
	// fmt reports a verb/arg type mismatch inline as %!verb(type=value).
	// Markers already present in the args themselves are not failures.
	inArgs := 0
	for _, a := range args {
		inArgs += strings.Count(fmt.Sprint(a), "%!")
	}
	if strings.Count(out, "%!") > inArgs {
		return "", fmt.Errorf("%w: %s: %s", ErrFormat, t.Category, out)
	}
	return out, nil
}

const fmtVerbs = "vTtbcdoOqxXUeEfFgGsp"

// arity returns how many arguments template consumes, numbering them the way
// fmt does: each verb or '*' takes the next argument and [n] moves the
// position to n. Unknown verbs and malformed indexes are errors.
func arity(template string) (int, error) {
	pos, need := 0, 0
	take := func() {
		pos++
		need = max(need, pos)
	}

	var err error
	for i := 0; i < len(template); i++ {
		if template[i] != '%' {
			continue
		}
		i++
		if i < len(template) && template[i] == '%' {
			continue
		}
		for i < len(template) && strings.IndexByte("+-# 0", template[i]) >= 0 {
			i++
		}

		if i, pos, err = argIndex(template, i, pos); err != nil {
			return 0, err
		}
		i = skipWidth(template, i, take)
		if i < len(template) && template[i] == '.' {
			if i, pos, err = argIndex(template, i+1, pos); err != nil {
				return 0, err
			}
			i = skipWidth(template, i, take)
		}
		if i, pos, err = argIndex(template, i, pos); err != nil {
			return 0, err
		}

		if i >= len(template) {
			return 0, fmt.Errorf("%w: %q ends inside a verb", ErrFormat, template)
		}
		if strings.IndexByte(fmtVerbs, template[i]) < 0 {
			return 0, fmt.Errorf("%w: unknown verb %%%c in %q", ErrFormat, template[i], template)
		}
		take()
	}
	return need, nil
}

// argIndex consumes an explicit [n] at i, returning the new argument position.
func argIndex(s string, i, pos int) (int, int, error) {
	if i >= len(s) || s[i] != '[' {
		return i, pos, nil
	}
	end := strings.IndexByte(s[i:], ']')
	if end < 0 {
		return 0, 0, fmt.Errorf("%w: unterminated argument index in %q", ErrFormat, s)
	}
	n, err := strconv.Atoi(s[i+1 : i+end])
	if err != nil || n < 1 {
		return 0, 0, fmt.Errorf("%w: bad argument index %q in %q", ErrFormat, s[i:i+end+1], s)
	}
	return i + end + 1, n - 1, nil
}

// skipWidth consumes a width or precision: digits, or '*' which takes an argument.
func skipWidth(s string, i int, take func()) int {
	if i < len(s) && s[i] == '*' {
		take()
		return i + 1
	}
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}
