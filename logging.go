// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httpcore

import "github.com/sirupsen/logrus"

// Logger is the optional structured-logging hook Reader and Writer report
// diagnostic events through. It is shaped after logrus.FieldLogger so that
// either
// *logrus.Logger or *logrus.Entry can be passed directly, matching how
// github.com/sirupsen/logrus is used elsewhere in the corpus (e.g.
// awslabs/amazon-ecr-containerd-resolver's example commands). A nil Logger
// means "don't log"; every call site in this package nil-checks before
// logging, rather than substituting a no-op implementation, so that a
// disabled Logger costs nothing beyond the nil comparison.
type Logger = logrus.FieldLogger
