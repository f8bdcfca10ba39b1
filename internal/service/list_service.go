package service

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/kaimonolist/linkd/internal/apperr"
	"github.com/kaimonolist/linkd/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ListService struct {
	database *gorm.DB
}

func NewListService(database *gorm.DB) *ListService {
	return &ListService{
		database: database,
	}
}

func (ls *ListService) GetList(listID string) (*model.List, error) {
	var list model.List

	err := ls.database.Where("id = ?", listID).First(&list).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "指定されたリストが見つかりませんでした。")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load list", err)
	}

	return &list, nil
}

// RequireMembership loads the list and verifies the caller belongs to it.
// Nearly every callable operation is gated on this check.
func (ls *ListService) RequireMembership(listID string, uid string) (*model.List, error) {
	list, err := ls.GetList(listID)
	if err != nil {
		return nil, err
	}

	if !ls.IsMember(list, uid) {
		return nil, apperr.New(apperr.PermissionDenied, "このリストに対する権限がありません。")
	}

	return list, nil
}

func (ls *ListService) Members(list *model.List) []string {
	return decodeMembers(list.Members)
}

func (ls *ListService) IsMember(list *model.List, uid string) bool {
	for _, member := range decodeMembers(list.Members) {
		if member == uid {
			return true
		}
	}
	return false
}

// AddMember appends uid to the list members inside the caller's
// transaction. It reports whether uid was already a member, in which case
// nothing is written.
func (ls *ListService) AddMember(tx *gorm.DB, list *model.List, uid string) (bool, error) {
	members := decodeMembers(list.Members)

	for _, member := range members {
		if member == uid {
			return true, nil
		}
	}

	members = append(members, uid)

	encoded, err := json.Marshal(members)
	if err != nil {
		return false, apperr.Wrap(apperr.Internal, "failed to encode list members", err)
	}

	err = tx.Model(&model.List{}).Where("id = ?", list.ID).Updates(map[string]any{
		"members":    string(encoded),
		"updated_at": time.Now().UnixMilli(),
	}).Error
	if err != nil {
		return false, apperr.Wrap(apperr.Internal, "failed to update list members", err)
	}

	return false, nil
}

// AddItem inserts a shopping list item on behalf of the linked assistant
// user. The item name is trimmed and must not end up empty.
func (ls *ListService) AddItem(listID string, uid string, name string) (*model.ListItem, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, apperr.New(apperr.InvalidArgument, "item name is empty")
	}

	list, err := ls.GetList(listID)
	if err != nil {
		return nil, err
	}

	if uid != "" && !ls.IsMember(list, uid) {
		return nil, apperr.New(apperr.PermissionDenied, "user is not a member of the list")
	}

	item := model.ListItem{
		ID:        uuid.New().String(),
		ListID:    listID,
		Name:      trimmed,
		Completed: false,
		CreatedAt: time.Now().UnixMilli(),
		CreatedBy: uid,
		Source:    model.ItemSourceAlexa,
	}

	if err := ls.database.Create(&item).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to create list item", err)
	}

	log.Info().Str("listId", listID).Str("itemId", item.ID).Str("uid", uid).Msg("Assistant item added")

	return &item, nil
}

func decodeMembers(encoded string) []string {
	if encoded == "" {
		return nil
	}

	var members []string
	if err := json.Unmarshal([]byte(encoded), &members); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal list members")
		return nil
	}

	return members
}
