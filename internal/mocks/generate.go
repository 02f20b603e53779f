package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name RosterReader --dir ../domain/player --output domain/player --outpkg playermock --filename roster_reader_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Reader --dir ../domain/match --output domain/match --outpkg matchmock --filename reader_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Submitter --dir ../domain/lineup --output domain/lineup --outpkg lineupmock --filename submitter_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name SubmissionRepository --dir ../domain/lineup --output domain/lineup --outpkg lineupmock --filename submission_repository_mock.go
