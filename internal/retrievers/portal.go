package retrievers

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// fill waits for the element at selector and types value into it.
func fill(ctx context.Context, page *rod.Page, selector, value string) error {
	el, err := page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("finding %s: %w", selector, err)
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("filling %s: %w", selector, err)
	}
	return nil
}

// focusField puts the cursor into the element at selector. Used to park
// the cursor on a CAPTCHA input so the operator can type immediately.
func focusField(ctx context.Context, page *rod.Page, selector string) error {
	el, err := page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("finding %s: %w", selector, err)
	}
	if err := el.Focus(); err != nil {
		return fmt.Errorf("focusing %s: %w", selector, err)
	}
	return nil
}

// clickSelector clicks the element at selector.
func clickSelector(ctx context.Context, page *rod.Page, selector string) error {
	el, err := page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("finding %s: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("clicking %s: %w", selector, err)
	}
	return nil
}
