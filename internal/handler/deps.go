package handler

import (
	"chatterbox/internal/app/profile"
	"chatterbox/internal/app/storage"
	"chatterbox/internal/app/verify"
	"chatterbox/internal/configs"
	"chatterbox/internal/pkg/pow"
)

type AppDeps struct {
	Flows         *verify.Manager
	Config        *configs.AppConfig
	Profiles      *profile.Service
	AvatarStorage storage.StorageService
	Pow           *pow.PoWManager
}
