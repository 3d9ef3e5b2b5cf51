package services

import (
	"errors"
	"log"

	"github.com/portuna85/kraft/internal/apperr"
	"github.com/portuna85/kraft/internal/dto"
	"github.com/portuna85/kraft/internal/models"
	"github.com/portuna85/kraft/internal/utils"

	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register creates a user with a bcrypt-hashed password. Name and email
// must be unique; the DB constraint backstops the pre-checks.
func (s *UserService) Register(name, email, password string) (uint, error) {
	if err := s.checkDuplicateName(name); err != nil {
		return 0, err
	}
	if err := s.checkDuplicateEmail(email); err != nil {
		return 0, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return 0, apperr.Internal(err)
	}

	user := models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, apperr.Conflict("name or email already registered")
		}
		return 0, apperr.Internal(err)
	}

	log.Printf("user registered: userId=%d name=%s", user.ID, user.Name)
	return user.ID, nil
}

// Login verifies credentials and returns the principal for the session.
func (s *UserService) Login(name, password string) (Principal, error) {
	var user models.User
	if err := s.db.Where("name = ?", name).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Principal{}, apperr.Unauthorized("invalid name or password")
		}
		return Principal{}, apperr.Internal(err)
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		log.Printf("login failed: bad password for name=%s", name)
		return Principal{}, apperr.Unauthorized("invalid name or password")
	}

	log.Printf("login: userId=%d name=%s", user.ID, user.Name)
	return PrincipalFrom(&user), nil
}

func (s *UserService) Profile(userID uint) (dto.UserProfileResponse, error) {
	user, err := s.findUser(userID)
	if err != nil {
		return dto.UserProfileResponse{}, err
	}
	return dto.UserProfileFrom(user), nil
}

// UpdateEmail changes the user's email unless another account owns it.
func (s *UserService) UpdateEmail(userID uint, newEmail string) (dto.UserProfileResponse, error) {
	user, err := s.findUser(userID)
	if err != nil {
		return dto.UserProfileResponse{}, err
	}

	var count int64
	if err := s.db.Model(&models.User{}).
		Where("email = ? AND id <> ?", newEmail, userID).
		Count(&count).Error; err != nil {
		return dto.UserProfileResponse{}, apperr.Internal(err)
	}
	if count > 0 {
		return dto.UserProfileResponse{}, apperr.Conflict("email already registered: " + newEmail)
	}

	if err := s.db.Model(&user).Update("email", newEmail).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserProfileResponse{}, apperr.Conflict("email already registered: " + newEmail)
		}
		return dto.UserProfileResponse{}, apperr.Internal(err)
	}

	log.Printf("email updated: userId=%d", userID)
	user.Email = newEmail
	return dto.UserProfileFrom(user), nil
}

// ChangePassword swaps the credential after verifying the current one.
func (s *UserService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	user, err := s.findUser(userID)
	if err != nil {
		return err
	}

	if !utils.CheckPasswordHash(currentPassword, user.Password) {
		return apperr.Unauthorized("current password does not match")
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.db.Model(&user).Update("password", hash).Error; err != nil {
		return apperr.Internal(err)
	}

	log.Printf("password changed: userId=%d", userID)
	return nil
}

// Delete removes the account together with its posts (and their comments)
// and its comments, all in one transaction.
func (s *UserService) Delete(userID uint) error {
	user, err := s.findUser(userID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Comments on the user's posts, including other users' comments.
		if err := tx.Where("post_id IN (?)",
			tx.Session(&gorm.Session{NewDB: true}).
				Model(&models.Post{}).Select("id").Where("author_id = ?", userID),
		).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		// Replies other users attached to this user's comments.
		if err := tx.Where("parent_id IN (?)",
			tx.Session(&gorm.Session{NewDB: true}).
				Model(&models.Comment{}).Select("id").Where("author_id = ?", userID),
		).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", userID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", userID).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return apperr.Internal(err)
	}

	log.Printf("user deleted: userId=%d", userID)
	return nil
}

func (s *UserService) findUser(id uint) (models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, apperr.NotFound("user", id)
		}
		return user, apperr.Internal(err)
	}
	return user, nil
}

func (s *UserService) checkDuplicateName(name string) error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return apperr.Internal(err)
	}
	if count > 0 {
		return apperr.Conflict("name already registered: " + name)
	}
	return nil
}

func (s *UserService) checkDuplicateEmail(email string) error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return apperr.Internal(err)
	}
	if count > 0 {
		return apperr.Conflict("email already registered: " + email)
	}
	return nil
}
