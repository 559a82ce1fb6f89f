package fare

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "fare")
