package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"portfolio-service/models"
	"portfolio-service/textlist"
)

// decodeForm turns the posted fields of an editor form into a column patch.
// Only columns present in the form end up in the patch; other keys are
// ignored.
func decodeForm(entity models.Entity, form url.Values) (map[string]any, error) {
	columns, ok := models.Columns(entity)
	if !ok {
		return nil, fmt.Errorf("unknown entity %q", entity)
	}

	patch := make(map[string]any)
	for _, column := range columns {
		raw, present := form[column.Name]
		if !present || len(raw) == 0 {
			continue
		}
		value, err := decodeValue(column, raw[len(raw)-1])
		if err != nil {
			return nil, err
		}
		patch[column.Name] = value
	}
	return patch, nil
}

func decodeValue(column models.Column, raw string) (any, error) {
	switch column.Kind {
	case models.KindOptionalText:
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			return trimmed, nil
		}
		return nil, nil
	case models.KindLines:
		return textlist.SplitLines(raw), nil
	case models.KindCSV:
		return textlist.SplitCSV(raw), nil
	case models.KindInt:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, &models.ValidationError{Column: column.Name, Message: column.Name + " must be a whole number"}
		}
		return n, nil
	case models.KindBool:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "", "0", "false", "off":
			return false, nil
		case "1", "true", "on", "yes":
			return true, nil
		}
		return nil, &models.ValidationError{Column: column.Name, Message: column.Name + " must be true or false"}
	default:
		return strings.TrimSpace(raw), nil
	}
}
