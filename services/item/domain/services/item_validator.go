package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/titleguard/services/item/domain/models"
)

// ValidateItemForSave performs structural checks on an Item aggregate before it
// is persisted. Title character rules are not applied here: the save path is
// guarded by the title command, and non-Component items are never checked.
func ValidateItemForSave(item *models.Item) error {
	if item == nil {
		return fmt.Errorf("item cannot be nil")
	}

	if _, err := models.ParseItemType(item.Type.String()); err != nil {
		return err
	}

	if _, err := models.NewItemTitle(item.Title.String()); err != nil {
		return err
	}

	if item.OrgID == uuid.Nil {
		return fmt.Errorf("org_id must be set")
	}

	if item.ID == uuid.Nil {
		return fmt.Errorf("id must be set")
	}

	return nil
}

// ValidateItemForCreation adds business-level checks to ValidateItemForSave for
// items created outside the authoring surface: Component titles must pass the
// character whitelist up front.
func ValidateItemForCreation(item *models.Item) error {
	if err := ValidateItemForSave(item); err != nil {
		return err
	}

	if title, ok := ExtractTitle(item); ok {
		if err := ValidateTitle(title); err != nil {
			return err
		}
	}

	return nil
}
