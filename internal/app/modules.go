package app

import (
	"github.com/vk/petal/internal/registry"
	"github.com/vk/petal/modules/http_pages"
	"github.com/vk/petal/modules/print"
	"github.com/vk/petal/modules/seed"
	"github.com/vk/petal/modules/socketio"
	"github.com/vk/petal/modules/synthetic"
	"github.com/vk/petal/modules/upload"
)

// coreModules is the definitive list of all drivers compiled into the petal
// binary.
var coreModules = []registry.Module{
	&seed.Module{},
	&synthetic.Module{},
	&http_pages.Module{},
	&socketio.Module{},
	&print.Module{},
	&upload.Module{},
}
