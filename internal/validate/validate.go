package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var reUsername = regexp.MustCompile(`^[A-Za-z0-9_\-\.]{1,64}$`)

type multiErr []error

func (m multiErr) Error() string {
	var b strings.Builder
	for i, e := range m {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Error())
	}
	return b.String()
}
func (m multiErr) OrNil() error {
	if len(m) == 0 {
		return nil
	}
	return m
}

func Credentials(username, password string) error {
	var errs multiErr

	if username == "" {
		errs = append(errs, fmt.Errorf("username: required"))
	} else if !reUsername.MatchString(username) {
		errs = append(errs, fmt.Errorf("username: 1..64 [A-Za-z0-9_.-]"))
	}
	if password == "" {
		errs = append(errs, fmt.Errorf("password: required"))
	}

	return errs.OrNil()
}

func NewOrder(date string) error {
	var errs multiErr

	if strings.TrimSpace(date) == "" {
		errs = append(errs, fmt.Errorf("date: required"))
	} else if _, err := time.Parse(time.DateOnly, date); err != nil {
		errs = append(errs, fmt.Errorf("date: must be YYYY-MM-DD"))
	}

	return errs.OrNil()
}

func OrderLine(productID int64, quantity int) error {
	var errs multiErr

	if productID == 0 {
		errs = append(errs, fmt.Errorf("productId: required"))
	} else if productID < 0 {
		errs = append(errs, fmt.Errorf("productId: must be > 0"))
	}
	if quantity == 0 {
		errs = append(errs, fmt.Errorf("quantity: required"))
	} else if quantity < 0 {
		errs = append(errs, fmt.Errorf("quantity: must be > 0"))
	}

	return errs.OrNil()
}
