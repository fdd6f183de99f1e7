package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/board-server/internal/adapter/repository"
	domainRepo "github.com/wekeepgrowing/board-server/internal/domain/repository"
)

// Repositories holds all repository instances
type Repositories struct {
	Users       domainRepo.UserRepository
	Boards      domainRepo.BoardRepository
	Memberships domainRepo.MembershipRepository
	InviteLinks domainRepo.InviteLinkRepository
	Cards       domainRepo.CardRepository
	Activities  domainRepo.ActivityRepository
	Transactor  domainRepo.Transactor
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Users:       repository.NewUserRepository(db, logger),
		Boards:      repository.NewBoardRepository(db, logger),
		Memberships: repository.NewMembershipRepository(db, logger),
		InviteLinks: repository.NewInviteLinkRepository(db, logger),
		Cards:       repository.NewCardRepository(db, logger),
		Activities:  repository.NewActivityRepository(db, logger),
		Transactor:  repository.NewTransactor(db),
	}
}
