package loader

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "loader")
