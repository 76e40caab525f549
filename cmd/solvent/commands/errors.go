package commands

import ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"

func invalidFileID(id string) error {
	return ferrors.NotFoundError("no file with this id").WithContext("id", id).Build()
}
