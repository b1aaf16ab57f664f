package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"farmgate/internal/verification/ports/mocks"
	"farmgate/internal/verification/providers"
	dErrors "farmgate/pkg/domain-errors"
)

type ExtractorSuite struct {
	suite.Suite
	detector  *mocks.MockTextDetector
	extractor *Extractor
}

func TestExtractorSuite(t *testing.T) {
	suite.Run(t, new(ExtractorSuite))
}

func (s *ExtractorSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.detector = mocks.NewMockTextDetector(ctrl)

	var err error
	s.extractor, err = New(s.detector)
	s.Require().NoError(err)
}

func (s *ExtractorSuite) TestNew() {
	_, err := New(nil)
	s.Error(err)
	s.Contains(err.Error(), "text detector is required")
}

func (s *ExtractorSuite) TestExtract() {
	ctx := context.Background()
	img := []byte("id-image")

	s.Run("labelled name is parsed", func() {
		s.detector.EXPECT().DetectText(gomock.Any(), img).Return("Name: Juan D. Santos", nil)

		data, err := s.extractor.Extract(ctx, img)
		s.Require().NoError(err)
		s.Require().NotNil(data.FullName)
		s.Equal("Juan D. Santos", *data.FullName)
	})

	s.Run("no text is data, not an error", func() {
		s.detector.EXPECT().DetectText(gomock.Any(), img).Return("", nil)

		data, err := s.extractor.Extract(ctx, img)
		s.Require().NoError(err)
		s.Nil(data.FullName)
	})

	s.Run("unreadable image is data, not an error", func() {
		s.detector.EXPECT().DetectText(gomock.Any(), img).
			Return("", providers.NewProviderError(providers.ErrorBadData, providerVision, "Bad image data", nil))

		data, err := s.extractor.Extract(ctx, img)
		s.Require().NoError(err)
		s.Nil(data.FullName)
	})

	s.Run("timeout is vendor unavailable", func() {
		s.detector.EXPECT().DetectText(gomock.Any(), img).
			Return("", providers.ClassifyTransport(providerVision, context.DeadlineExceeded))

		_, err := s.extractor.Extract(ctx, img)
		s.True(dErrors.HasCode(err, dErrors.CodeVendorUnavailable))
	})

	s.Run("outage is vendor unavailable", func() {
		s.detector.EXPECT().DetectText(gomock.Any(), img).Return("", errors.New("connection reset"))

		_, err := s.extractor.Extract(ctx, img)
		s.True(dErrors.HasCode(err, dErrors.CodeVendorUnavailable))
	})

	s.Run("call carries a deadline", func() {
		s.detector.EXPECT().DetectText(gomock.Any(), img).DoAndReturn(func(ctx context.Context, _ []byte) (string, error) {
			_, ok := ctx.Deadline()
			s.True(ok)
			return "", nil
		})

		_, err := s.extractor.Extract(ctx, img)
		s.NoError(err)
	})
}
